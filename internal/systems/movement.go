package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

// MaxSteps - эффективная дальность хода = floor(AP / стоимость шага).
// Movement.Range > 0 дополнительно ограничивает дальность.
func MaxSteps(e *domain.Entity, ap int, costs domain.Costs) int {
	if e.Stats == nil || costs.MoveAP <= 0 {
		return 0
	}
	steps := ap / costs.MoveAP
	if e.Movement != nil && e.Movement.Range > 0 && steps > e.Movement.Range {
		steps = e.Movement.Range
	}
	return steps
}

// MoveCost - стоимость пути: (длина - 1) × стоимость шага
func MoveCost(path []hexgrid.Hex, costs domain.Costs) int {
	if len(path) < 2 {
		return 0
	}
	return (len(path) - 1) * costs.MoveAP
}

// MovePlan - проверенный, но еще не примененный ход
type MovePlan struct {
	Path []hexgrid.Hex
	Cost int
}

// PlanMove проверяет ход к dest. Не меняет состояние мира!
func PlanMove(w *domain.GameWorld, mover *domain.Entity, dest hexgrid.Hex, costs domain.Costs) (MovePlan, *domain.Rejection) {
	if mover.Stats == nil {
		return MovePlan{}, domain.Reject("%s не может двигаться.", mover.Name)
	}
	if w.TileAt(dest) == nil {
		return MovePlan{}, domain.Reject("Клетки %s нет на карте.", dest)
	}
	if dest == mover.Pos {
		return MovePlan{}, domain.Reject("Вы уже здесь.")
	}

	path := FindPath(w, mover.Pos, dest, NeighborsFor(w, mover))
	if path == nil {
		return MovePlan{}, domain.Reject("Путь до %s не найден.", dest)
	}
	if len(path)-1 > MaxSteps(mover, mover.Stats.AP, costs) {
		return MovePlan{}, domain.Reject("Недостаточно AP: нужно %d шагов.", len(path)-1)
	}
	return MovePlan{Path: path, Cost: MoveCost(path, costs)}, nil
}

// PlanApproach - путь к клетке рядом с target (для атаки/портала с подходом).
// budget - сколько AP можно потратить на шаги.
func PlanApproach(w *domain.GameWorld, mover *domain.Entity, target hexgrid.Hex, budget int, costs domain.Costs) (MovePlan, *domain.Rejection) {
	path := FindPathAdjacent(w, mover.Pos, target, mover, NeighborsFor(w, mover))
	if path == nil {
		return MovePlan{}, domain.Reject("Не подойти к цели.")
	}
	if len(path)-1 > MaxSteps(mover, budget, costs) {
		return MovePlan{}, domain.Reject("Недостаточно AP, чтобы подойти.")
	}
	return MovePlan{Path: path, Cost: MoveCost(path, costs)}, nil
}

// ApplyMove переносит сущность в конец пути и списывает AP.
// План должен быть получен через PlanMove/PlanApproach в том же состоянии мира.
func ApplyMove(w *domain.GameWorld, mover *domain.Entity, plan MovePlan, events *domain.EventBuffer) error {
	if len(plan.Path) < 2 {
		return nil
	}
	dest := plan.Path[len(plan.Path)-1]
	if err := w.UpdateEntityPos(mover, dest); err != nil {
		return err
	}
	mover.SpendAP(plan.Cost, events)
	events.PositionChanged(mover)
	UpdateVisibility(w, mover)
	return nil
}

// Teleport - перемещение без поиска пути (эффект movement).
// Клетка должна существовать, не быть стеной и не быть занятой.
func Teleport(w *domain.GameWorld, mover *domain.Entity, dest hexgrid.Hex, events *domain.EventBuffer) *domain.Rejection {
	if !w.IsPassable(dest, mover) {
		return domain.Reject("Нельзя переместиться в %s.", dest)
	}
	if err := w.UpdateEntityPos(mover, dest); err != nil {
		return domain.Reject("%v", err)
	}
	events.PositionChanged(mover)
	UpdateVisibility(w, mover)
	return nil
}
