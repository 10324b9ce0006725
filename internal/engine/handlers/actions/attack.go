package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
)

func HandleAttack(ctx handlers.Context, a domain.Action) handlers.Result {
	actor := ctx.Actor

	// 1. Поиск цели, дистанция и видимость (дальний бой - через LOS)
	reach := actor.EffectiveAttackRange()
	v := systems.ValidateTarget(actor, a.TargetID, reach, reach > 1, ctx.World, ctx.World)
	if !v.Valid {
		return handlers.Reject("%s", v.Message)
	}
	if !systems.IsAttackable(actor, v.Target) {
		return handlers.Reject("%s нельзя атаковать.", v.Target.Name)
	}

	// 2. Хватает ли AP
	if !actor.Stats.HasAP(ctx.Rules.Costs.AttackAP) {
		return handlers.Reject("Недостаточно AP для атаки.")
	}

	// 3. Вызов Системы Боя
	strike(ctx, v.Target)
	return handlers.EmptyResult()
}
