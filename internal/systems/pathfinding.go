package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

// NeighborFunc - проходимые соседи клетки для конкретного искателя
type NeighborFunc func(t *domain.Tile) []*domain.Tile

// NeighborsFor выбирает правило проходимости.
// Игрок ходит только по разведанным клеткам (GetWalkableNeighbors), AI туман не видит.
func NeighborsFor(w *domain.GameWorld, mover *domain.Entity) NeighborFunc {
	if mover == nil || mover.Kind == domain.KindPlayer {
		return w.GetWalkableNeighbors
	}
	return func(t *domain.Tile) []*domain.Tile {
		return w.NeighborsWhere(t, func(n *domain.Tile) bool {
			return w.BlockerAt(n.Pos, mover) == nil
		})
	}
}

// search - поиск с равной стоимостью шага. Останавливается, когда stop
// извлечен из очереди; stop == nil - обходит все достижимые клетки.
// Результат остается в служебных полях клеток.
func search(w *domain.GameWorld, start *domain.Tile, stop *domain.Tile, neighbors NeighborFunc) bool {
	w.ResetPathfinding()

	var frontier Frontier
	start.PathVisited = true
	frontier.Enqueue(start, 0)

	for frontier.Len() > 0 {
		current := frontier.Dequeue().Tile
		if current == stop {
			return true
		}
		for _, next := range neighbors(current) {
			if next.PathVisited {
				continue
			}
			next.PathVisited = true
			next.PathCost = current.PathCost + 1
			next.PathFrom = current
			frontier.Enqueue(next, next.PathCost)
		}
	}
	return stop == nil
}

// reconstruct собирает путь по PathFrom от goal назад к старту
func reconstruct(goal *domain.Tile) []hexgrid.Hex {
	path := make([]hexgrid.Hex, goal.PathCost+1)
	for t, i := goal, goal.PathCost; t != nil; t, i = t.PathFrom, i-1 {
		path[i] = t.Pos
	}
	return path
}

// FindPath - путь от start до goal включительно; nil, если недостижимо.
// start == goal дает путь длины 1.
func FindPath(w *domain.GameWorld, start, goal hexgrid.Hex, neighbors NeighborFunc) []hexgrid.Hex {
	from, to := w.TileAt(start), w.TileAt(goal)
	if from == nil || to == nil {
		return nil
	}
	if start == goal {
		return []hexgrid.Hex{start}
	}
	if !search(w, from, to, neighbors) {
		return nil
	}
	return reconstruct(to)
}

// FindAllDistances - минимальное число шагов до каждой достижимой клетки.
// Одним обходом, чтобы не искать путь заново для каждой проверки дальности.
func FindAllDistances(w *domain.GameWorld, start hexgrid.Hex, neighbors NeighborFunc) map[hexgrid.Hex]int {
	from := w.TileAt(start)
	if from == nil {
		return nil
	}
	search(w, from, nil, neighbors)

	out := make(map[hexgrid.Hex]int)
	for _, h := range w.TileOrder {
		if t := w.Tiles[h]; t.PathVisited {
			out[h] = t.PathCost
		}
	}
	return out
}

// FindPathAdjacent - кратчайший путь до любой соседней с target клетки.
// Соседи, занятые чужой блокирующей сущностью, не рассматриваются.
// Если мы уже рядом - путь из одной стартовой клетки.
// При равной длине побеждает сосед, идущий раньше в hexgrid.Directions.
func FindPathAdjacent(w *domain.GameWorld, start, target hexgrid.Hex, mover *domain.Entity, neighbors NeighborFunc) []hexgrid.Hex {
	from := w.TileAt(start)
	if from == nil {
		return nil
	}
	if start.IsAdjacent(target) {
		return []hexgrid.Hex{start}
	}

	search(w, from, nil, neighbors)

	var best *domain.Tile
	for _, h := range target.Neighbors() {
		t := w.TileAt(h)
		if t == nil || t.IsObstacle || !t.PathVisited {
			continue
		}
		if w.BlockerAt(h, mover) != nil {
			continue
		}
		if best == nil || t.PathCost < best.PathCost {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	return reconstruct(best)
}
