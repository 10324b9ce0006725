package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// moveAlong применяет проверенный план и запускает авто-взаимодействия на клетке прибытия
func moveAlong(ctx handlers.Context, plan systems.MovePlan) handlers.Result {
	if err := systems.ApplyMove(ctx.World, ctx.Actor, plan, ctx.Events); err != nil {
		// План проверен в том же состоянии мира, сюда попадать не должны
		logger.Log.WithFields(logrus.Fields{
			"component": "actions",
			"actor_id":  ctx.Actor.ID,
		}).WithError(err).Error("Move plan became invalid")
		return handlers.Reject("Не удалось переместиться.")
	}
	if ctx.IsPlayer() {
		systems.RevealConcealed(ctx.World, ctx.Actor, ctx.Events)
	}
	return autoInteract(ctx)
}

// autoInteract - после успешного перемещения: ловушки срабатывают под любым,
// портал - только под игроком, и на нем обход прекращается.
func autoInteract(ctx handlers.Context) handlers.Result {
	for _, other := range ctx.World.EntitiesAt(ctx.Actor.Pos) {
		if other == ctx.Actor || other.IsRemoved() {
			continue
		}
		if other.Trap != nil {
			if rej := systems.ActivateTrap(ctx.World, ctx.Rules, other, ctx.Actor, ctx.Events); rej != nil {
				logger.Log.WithFields(logrus.Fields{
					"component": "actions",
					"trap_id":   other.ID,
				}).Debug(rej.Reason)
			}
			if !ctx.Actor.IsAlive() {
				break
			}
		}
		if other.Portal != nil && ctx.IsPlayer() {
			ctx.Events.Log(domain.LogEvent, ctx.Actor.ID, "%s входит в %s.", ctx.Actor.Name, other.Name)
			return handlers.Result{Transition: &handlers.Transition{
				PortalID:  other.ID,
				NextMapID: other.Portal.NextMapID,
			}}
		}
	}
	return handlers.EmptyResult()
}

// inAttackRange - цель в радиусе атаки и (для дальнего боя) видна
func inAttackRange(w *domain.GameWorld, actor *domain.Entity, from hexgrid.Hex, target *domain.Entity) bool {
	reach := actor.EffectiveAttackRange()
	dist := hexgrid.Distance(from, target.Pos)
	if dist > reach {
		return false
	}
	return dist <= 1 || systems.HasLineOfSight(w, from, target.Pos)
}

// strike - списать AP за атаку и ударить. Проверки уже пройдены.
func strike(ctx handlers.Context, target *domain.Entity) {
	ctx.Actor.SpendAP(ctx.Rules.Costs.AttackAP, ctx.Events)
	systems.ApplyAttack(ctx.World, ctx.Rules, ctx.Actor, target, ctx.Events)
}

// approachAndAttack - подойти к цели и ударить одной операцией.
// Стоимость шагов + атаки проверяется до любых изменений.
func approachAndAttack(ctx handlers.Context, target *domain.Entity) handlers.Result {
	actor := ctx.Actor
	cost := ctx.Rules.Costs.AttackAP
	if !actor.Stats.HasAP(cost) {
		return handlers.Reject("Недостаточно AP для атаки.")
	}

	if inAttackRange(ctx.World, actor, actor.Pos, target) {
		strike(ctx, target)
		return handlers.EmptyResult()
	}

	plan, rej := systems.PlanApproach(ctx.World, actor, target.Pos, actor.Stats.AP-cost, ctx.Rules.Costs)
	if rej != nil {
		return handlers.Result{Rejected: rej}
	}

	res := moveAlong(ctx, plan)
	if res.Transition != nil || !actor.IsAlive() || !systems.IsAttackable(actor, target) {
		return res
	}
	strike(ctx, target)
	return res
}
