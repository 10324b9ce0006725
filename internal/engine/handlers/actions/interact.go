package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
	"hextactics-server/pkg/hexgrid"
)

// HandleInteract - разбор по возможностям цели: ловушка, объект, портал, иначе атака
func HandleInteract(ctx handlers.Context, a domain.Action) handlers.Result {
	actor := ctx.Actor

	// 1. Поиск цели взаимодействия
	target := ctx.World.GetEntity(a.TargetID)
	if target == nil || target.IsRemoved() || target.IsHidden() || target == actor {
		return handlers.Reject("Вы не видите, с чем взаимодействовать.")
	}

	switch {
	case target.Trap != nil:
		return handlers.Reject("%s нельзя использовать напрямую.", target.Name)

	case target.Interactable != nil:
		// 2. Объект: рядом или на той же клетке
		if hexgrid.Distance(actor.Pos, target.Pos) > 1 {
			return handlers.Reject("Нужно подойти ближе.")
		}
		cost := ctx.Rules.Costs.InteractAP
		if !actor.Stats.HasAP(cost) {
			return handlers.Reject("Недостаточно AP.")
		}
		if rej := systems.ApplyInteractable(ctx.World, target, actor, ctx.Events); rej != nil {
			return handlers.Result{Rejected: rej}
		}
		actor.SpendAP(cost, ctx.Events)
		return handlers.EmptyResult()

	case target.Portal != nil:
		// 3. Портал: сначала дойти до клетки, вход сработает сам
		if !ctx.IsPlayer() {
			return handlers.Reject("%s не может пройти через портал.", actor.Name)
		}
		if actor.Pos == target.Pos {
			return autoInteract(ctx)
		}
		plan, rej := systems.PlanMove(ctx.World, actor, target.Pos, ctx.Rules.Costs)
		if rej != nil {
			return handlers.Result{Rejected: rej}
		}
		return moveAlong(ctx, plan)

	case target.Stats != nil && target.IsAlive():
		// 4. Запасной вариант - атака с подходом
		return approachAndAttack(ctx, target)
	}

	return handlers.Reject("Ничего не происходит при взаимодействии с %s.", target.Name)
}
