package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ApplyAttack - базовая атака: урон = атака с учетом статусов, без защиты.
// Возвращает true, если цель погибла.
func ApplyAttack(w *domain.GameWorld, rules *domain.Rules, attacker, target *domain.Entity, events *domain.EventBuffer) bool {
	damage := EffectiveStat(attacker, "attack")
	events.Log(domain.LogDamage, attacker.ID, "%s наносит %d урона по %s.", attacker.Name, damage, target.Name)
	return DealDamage(w, rules, attacker, target, damage, events)
}

// DealDamage снимает HP и обрабатывает смерть. source может быть nil
// (ловушка, яд) - тогда опыт никому не начисляется.
func DealDamage(w *domain.GameWorld, rules *domain.Rules, source, target *domain.Entity, amount int, events *domain.EventBuffer) bool {
	if target.Stats == nil || !target.IsAlive() {
		return false
	}
	if amount < 0 {
		amount = 0
	}

	hpBefore := target.Stats.HP
	target.ModifyHP(-amount, events)
	died := target.Stats.IsDead()

	combatLogger := logger.Log.WithFields(logrus.Fields{
		"component":   "combat_system",
		"target_id":   target.ID,
		"target_name": target.Name,
		"damage":      amount,
		"hp_before":   hpBefore,
		"hp_after":    target.Stats.HP,
		"target_died": died,
	})
	if source != nil {
		combatLogger = combatLogger.WithField("source_id", source.ID)
	}
	combatLogger.Debug("Damage resolved.")

	if died {
		kill(w, rules, source, target, events)
	}
	return died
}

// kill - смерть: не-игрок убирается с карты, убийца получает опыт.
// Игрок остается на карте, GameOver объявляет координатор ходов.
func kill(w *domain.GameWorld, rules *domain.Rules, killer, target *domain.Entity, events *domain.EventBuffer) {
	events.Log(domain.LogDeath, target.ID, "%s погибает.", target.Name)

	if target.Kind != domain.KindPlayer {
		RemoveEntity(w, target, events)
	}

	if killer == nil || killer == target || killer.Stats == nil || !killer.IsAlive() {
		return
	}
	xp := target.Stats.XP
	if xp <= 0 {
		xp = rules.Progression.DefaultXP
	}
	if xp <= 0 {
		xp = 10
	}
	AwardXP(killer, xp, rules.Progression, events)
}

// RemoveEntity убирает сущность из индекса и шлет уведомление
func RemoveEntity(w *domain.GameWorld, e *domain.Entity, events *domain.EventBuffer) {
	w.UnregisterEntity(e)
	events.Emit(domain.Event{Type: domain.EventEntityRemoved, EntityID: e.ID})
}

// AwardXP начисляет опыт и проверяет порог уровня.
// Порог = уровень × xpPerLevel; опыт накопительный, можно пройти несколько порогов сразу.
// Возвращает число полученных уровней.
func AwardXP(e *domain.Entity, xp int, prog domain.Progression, events *domain.EventBuffer) int {
	if e.Stats == nil || xp <= 0 {
		return 0
	}
	s := e.Stats
	s.XP += xp
	events.Log(domain.LogInfo, e.ID, "%s получает %d опыта.", e.Name, xp)

	gained := 0
	for prog.XPPerLevel > 0 && s.XP >= s.Level*prog.XPPerLevel {
		s.Level++
		s.MaxHP += prog.HPPerLevel
		s.Attack += prog.AttackPerLevel
		s.HP = s.MaxHP
		gained++
		events.Log(domain.LogEvent, e.ID, "%s достигает уровня %d!", e.Name, s.Level)
	}

	events.StatsChanged(e)
	return gained
}
