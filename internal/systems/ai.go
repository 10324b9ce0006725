package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DefaultRuleSet - aggressive: атака в радиусе > подход > пропуск
var DefaultRuleSet = domain.RuleSet{
	ID: "aggressive",
	Rules: []domain.RuleDef{
		{Action: domain.RuleAttack},
		{Action: domain.RuleApproach},
		{Action: domain.RulePass},
	},
}

// ComputeIntent решает, что NPC сделает в следующую фазу врагов.
// Правила проверяются по порядку, побеждает первое выполнимое.
// Доступность по AP считается от MaxAP: к исполнению AP будет восстановлено.
func ComputeIntent(w *domain.GameWorld, rules *domain.Rules, npc, player *domain.Entity, turn int) domain.Intent {
	pass := domain.Intent{Kind: domain.IntentPass, Turn: turn}

	aiLogger := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"npc_id":    npc.ID,
		"npc_name":  npc.Name,
	})

	if !npc.IsAI() || !npc.IsAlive() || player == nil || !player.IsAlive() {
		return pass
	}

	ruleSet := DefaultRuleSet
	if npc.Behavior.RuleSet != "" {
		rs, err := rules.RuleSet(npc.Behavior.RuleSet)
		if err != nil {
			aiLogger.WithError(err).Error("Rule set not found, falling back to aggressive.")
		} else {
			ruleSet = rs
		}
	}

	dist := hexgrid.Distance(npc.Pos, player.Pos)
	budget := npc.Stats.MaxAP

	for i, rule := range ruleSet.Rules {
		if rule.MaxDistance > 0 && dist > rule.MaxDistance && rule.Action != domain.RulePass {
			continue
		}

		var intent *domain.Intent
		switch rule.Action {
		case domain.RuleAttack:
			intent = attackIntent(w, rules, npc, player, dist, budget)
		case domain.RuleSkill:
			intent = skillIntent(w, rules, npc, player, rule.Skill, dist, budget, aiLogger)
		case domain.RuleApproach:
			intent = approachIntent(w, rules, npc, player, budget)
		case domain.RulePass:
			intent = &domain.Intent{Kind: domain.IntentPass}
		default:
			aiLogger.WithField("action", rule.Action).Warn("Unknown rule action, skipped.")
		}

		if intent != nil {
			intent.Turn = turn
			aiLogger.WithFields(logrus.Fields{
				"rule":     i,
				"distance": dist,
				"intent":   intent.String(),
			}).Debug("Intent declared.")
			return *intent
		}
	}
	return pass
}

func attackIntent(w *domain.GameWorld, rules *domain.Rules, npc, player *domain.Entity, dist, budget int) *domain.Intent {
	reach := npc.EffectiveAttackRange()
	if dist > reach || budget < rules.Costs.AttackAP {
		return nil
	}
	if reach > 1 && dist > 1 && !HasLineOfSight(w, npc.Pos, player.Pos) {
		return nil
	}
	return &domain.Intent{Kind: domain.IntentAttack, Action: domain.AttackTarget(player.ID)}
}

func skillIntent(w *domain.GameWorld, rules *domain.Rules, npc, player *domain.Entity, skillID string, dist, budget int, aiLogger *logrus.Entry) *domain.Intent {
	slot := npc.FindSkill(skillID)
	if slot == nil {
		return nil
	}
	def, err := rules.Skill(skillID)
	if err != nil {
		aiLogger.WithError(err).Error("Skill rule references missing skill.")
		return nil
	}
	// К исполнению перезарядка уменьшится на 1 в начале сегмента
	if slot.CooldownRemaining > 1 || budget < slot.APCost || npc.Stats.MP < slot.MPCost {
		return nil
	}
	mode := domain.TargetSingle
	if len(def.Effects) > 0 && def.Effects[0].Mode != "" {
		mode = def.Effects[0].Mode
	}
	// На себя - без проверки дальности и видимости
	if mode == domain.TargetSelf {
		return &domain.Intent{Kind: domain.IntentSkill, Action: domain.UseSkillOn(skillID, npc.ID)}
	}

	if dist > def.Range {
		return nil
	}
	if def.RequiresLOS && dist > 1 && !HasLineOfSight(w, npc.Pos, player.Pos) {
		return nil
	}

	action := domain.UseSkillOn(skillID, player.ID)
	if mode == domain.TargetArea {
		action = domain.UseSkillAt(skillID, player.Pos)
	}
	return &domain.Intent{Kind: domain.IntentSkill, Action: action}
}

// approachIntent - ход в самую дальнюю доступную по AP клетку пути к игроку
func approachIntent(w *domain.GameWorld, rules *domain.Rules, npc, player *domain.Entity, budget int) *domain.Intent {
	path := FindPathAdjacent(w, npc.Pos, player.Pos, npc, NeighborsFor(w, npc))
	if len(path) < 2 {
		return nil
	}
	steps := MaxSteps(npc, budget, rules.Costs)
	if steps <= 0 {
		return nil
	}
	if steps > len(path)-1 {
		steps = len(path) - 1
	}
	return &domain.Intent{Kind: domain.IntentMove, Action: domain.MoveTo(path[steps])}
}
