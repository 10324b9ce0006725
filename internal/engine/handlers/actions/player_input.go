package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
)

// HandlePlayerInput - клик по клетке: атакуемый видимый обитатель - атака
// (с подходом), иначе перемещение.
func HandlePlayerInput(ctx handlers.Context, a domain.Action) handlers.Result {
	if a.Target == nil {
		return handlers.Reject("Не указана клетка.")
	}
	if ctx.World.TileAt(*a.Target) == nil {
		return handlers.Reject("Клетки %s нет на карте.", *a.Target)
	}

	for _, occupant := range ctx.World.EntitiesAt(*a.Target) {
		if systems.IsAttackable(ctx.Actor, occupant) {
			return approachAndAttack(ctx, occupant)
		}
	}
	return HandleMove(ctx, domain.MoveTo(*a.Target))
}
