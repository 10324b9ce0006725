package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/systems"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// HandleSkill - умение. Перезарядка и AP/MP проверяются заранее, стоимость
// списывается при попытке. Эффекты применяются в объявленном порядке.
func HandleSkill(ctx handlers.Context, a domain.Action) handlers.Result {
	actor := ctx.Actor
	skillLogger := logger.Log.WithFields(logrus.Fields{
		"component": "skill_system",
		"actor_id":  actor.ID,
		"skill_id":  a.SkillID,
	})

	// 1. Слот и определение
	slot := actor.FindSkill(a.SkillID)
	if slot == nil {
		return handlers.Reject("%s не владеет умением %s.", actor.Name, a.SkillID)
	}
	def, err := ctx.Rules.Skill(slot.ID)
	if err != nil {
		skillLogger.WithError(err).Error("Skill definition missing")
		return handlers.Reject("Умение %s недоступно.", a.SkillID)
	}

	// 2. Ресурсы
	if slot.CooldownRemaining > 0 {
		return handlers.Reject("%s перезаряжается еще %d ход(а).", def.Name, slot.CooldownRemaining)
	}
	if !actor.Stats.HasAP(slot.APCost) {
		return handlers.Reject("Недостаточно AP для %s.", def.Name)
	}
	if !actor.Stats.HasMP(slot.MPCost) {
		return handlers.Reject("Недостаточно MP для %s.", def.Name)
	}

	// 3. Цель
	center, primary, rej := resolveSkillTarget(ctx, def, a)
	if rej != nil {
		return handlers.Result{Rejected: rej}
	}
	for _, eff := range def.Effects {
		if eff.Type == domain.EffectMovement && !ctx.World.IsPassable(center, actor) {
			return handlers.Reject("Нельзя переместиться в %s.", center)
		}
	}

	// 4. Оплата и перезарядка - безусловно
	actor.SpendAP(slot.APCost, ctx.Events)
	actor.ModifyMP(-slot.MPCost, ctx.Events)
	slot.CooldownRemaining = slot.Cooldown
	ctx.Events.CooldownChanged(actor, slot)
	ctx.Events.Log(domain.LogInfo, actor.ID, "%s применяет %s.", actor.Name, def.Name)

	// 5. Эффекты
	for _, eff := range def.Effects {
		if !actor.IsAlive() {
			break
		}
		switch eff.Type {
		case domain.EffectMovement:
			if rej := systems.Teleport(ctx.World, actor, center, ctx.Events); rej != nil {
				skillLogger.Warn(rej.Reason)
				continue
			}
			if ctx.IsPlayer() {
				systems.RevealConcealed(ctx.World, actor, ctx.Events)
			}
			if res := autoInteract(ctx); res.Transition != nil {
				return res
			}

		case domain.EffectDamage:
			for _, t := range effectTargets(ctx, eff, center, primary) {
				amount := eff.ScaledAmount(eff.Amount)
				ctx.Events.Log(domain.LogDamage, actor.ID, "%s: %s получает %d урона.", def.Name, t.Name, amount)
				systems.DealDamage(ctx.World, ctx.Rules, actor, t, amount, ctx.Events)
			}

		case domain.EffectApplyStatus:
			for _, t := range effectTargets(ctx, eff, center, primary) {
				if err := systems.ApplyStatus(ctx.Rules, t, eff.Status, eff.Duration, ctx.Events); err != nil {
					skillLogger.WithError(err).Error("Status effect skipped")
				}
			}

		default:
			skillLogger.WithField("effect", eff.Type).Warn("Unknown effect type, skipped")
		}
	}
	return handlers.EmptyResult()
}

// resolveSkillTarget - центр эффекта и основная цель.
// Без цели - только умения, целиком направленные на себя.
// Range 0 допускает только собственную клетку.
func resolveSkillTarget(ctx handlers.Context, def domain.SkillDef, a domain.Action) (hexgrid.Hex, *domain.Entity, *domain.Rejection) {
	actor := ctx.Actor

	switch {
	case a.TargetID != "":
		v := systems.ValidateTarget(actor, a.TargetID, def.Range, def.RequiresLOS, ctx.World, ctx.World)
		if !v.Valid {
			return hexgrid.Hex{}, nil, domain.Reject("%s", v.Message)
		}
		return v.Target.Pos, v.Target, nil

	case a.Target != nil:
		center := *a.Target
		if ctx.World.TileAt(center) == nil {
			return hexgrid.Hex{}, nil, domain.Reject("Клетки %s нет на карте.", center)
		}
		dist := hexgrid.Distance(actor.Pos, center)
		if dist > def.Range {
			return hexgrid.Hex{}, nil, domain.Reject("Слишком далеко для %s.", def.Name)
		}
		if def.RequiresLOS && dist > 1 && !systems.HasLineOfSight(ctx.World, actor.Pos, center) {
			return hexgrid.Hex{}, nil, domain.Reject("Клетка %s не видна.", center)
		}
		return center, nil, nil
	}

	for _, eff := range def.Effects {
		if eff.Type == domain.EffectMovement || eff.Mode != domain.TargetSelf {
			return hexgrid.Hex{}, nil, domain.Reject("Для %s нужна цель.", def.Name)
		}
	}
	return actor.Pos, actor, nil
}

// effectTargets - цели эффекта по режиму: self, single (сущность на клетке),
// area (все живые в радиусе, кроме заклинателя, в порядке создания).
func effectTargets(ctx handlers.Context, eff domain.EffectDef, center hexgrid.Hex, primary *domain.Entity) []*domain.Entity {
	actor := ctx.Actor

	switch eff.Mode {
	case domain.TargetSelf:
		return []*domain.Entity{actor}

	case domain.TargetArea:
		var out []*domain.Entity
		for _, e := range ctx.World.Entities() {
			if e == actor || e.Stats == nil || !e.IsAlive() {
				continue
			}
			if hexgrid.Distance(center, e.Pos) <= eff.Radius {
				out = append(out, e)
			}
		}
		return out
	}

	if primary != nil && primary != actor && primary.IsAlive() {
		return []*domain.Entity{primary}
	}
	for _, e := range ctx.World.EntitiesAt(center) {
		if e != actor && e.Stats != nil && e.IsAlive() && !e.IsHidden() {
			return []*domain.Entity{e}
		}
	}
	return nil
}
