package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
)

// HandleMove - путь существует и короче floor(AP / стоимость шага)
func HandleMove(ctx handlers.Context, a domain.Action) handlers.Result {
	if a.Target == nil {
		return handlers.Reject("Не указана клетка.")
	}

	plan, rej := systems.PlanMove(ctx.World, ctx.Actor, *a.Target, ctx.Rules.Costs)
	if rej != nil {
		return handlers.Result{Rejected: rej}
	}

	ctx.Events.Log(domain.LogInfo, ctx.Actor.ID, "%s перемещается в %s.", ctx.Actor.Name, *a.Target)
	return moveAlong(ctx, plan)
}
