package systems

import (
	"sort"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// EffectiveStat - базовое значение + модификаторы активных статусов
func EffectiveStat(e *domain.Entity, stat string) int {
	if e.Stats == nil {
		return 0
	}
	var v int
	switch stat {
	case "attack":
		v = e.Stats.Attack
	case "defense":
		v = e.Stats.Defense
	case "magicAttack":
		v = e.Stats.MagicAttack
	case "magicDefense":
		v = e.Stats.MagicDefense
	case "accuracy":
		v = e.Stats.Accuracy
	case "evasion":
		v = e.Stats.Evasion
	default:
		return 0
	}
	if e.Status != nil {
		for _, st := range e.Status.Active {
			for _, m := range st.Modifiers {
				if m.Stat == stat {
					v += m.Delta
				}
			}
		}
	}
	if v < 0 {
		v = 0
	}
	return v
}

// ApplyStatus вешает статус. duration 0 - длительность из таблицы статусов.
// Повторное наложение обновляет длительность.
func ApplyStatus(rules *domain.Rules, target *domain.Entity, statusID string, duration int, events *domain.EventBuffer) error {
	def, err := rules.Status(statusID)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = def.Duration
	}
	if target.Status == nil {
		target.Attach(domain.CompStatusEffects)
	}

	target.Status.Active[statusID] = &domain.ActiveStatus{
		ID:        statusID,
		Modifiers: def.Modifiers,
		Tick:      def.Tick,
		Remaining: duration,
	}
	events.Emit(domain.Event{Type: domain.EventStatusChanged, EntityID: target.ID, SkillID: statusID, Value: duration})
	events.Log(domain.LogEvent, target.ID, "%s: наложен эффект %s (%d).", target.Name, statusID, duration)
	return nil
}

// TickStatuses - начало сегмента хода: тики урона/лечения и уменьшение длительности.
// Статусы обходятся в порядке ID, чтобы результат не зависел от порядка map.
func TickStatuses(w *domain.GameWorld, rules *domain.Rules, e *domain.Entity, events *domain.EventBuffer) {
	if e.Status == nil || len(e.Status.Active) == 0 {
		return
	}

	ids := make([]string, 0, len(e.Status.Active))
	for id := range e.Status.Active {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		st := e.Status.Active[id]
		if st == nil {
			continue
		}
		if st.Tick.Heal > 0 && e.Stats != nil {
			e.ModifyHP(st.Tick.Heal, events)
		}
		if st.Tick.Damage > 0 && e.Stats != nil {
			events.Log(domain.LogDamage, e.ID, "%s получает %d урона от %s.", e.Name, st.Tick.Damage, id)
			if DealDamage(w, rules, nil, e, st.Tick.Damage, events) {
				logger.Log.WithFields(logrus.Fields{
					"component": "status_system",
					"entity_id": e.ID,
					"status":    id,
				}).Debug("Entity died from status tick.")
				return
			}
		}

		st.Remaining--
		if st.Remaining <= 0 {
			delete(e.Status.Active, id)
			events.Emit(domain.Event{Type: domain.EventStatusChanged, EntityID: e.ID, SkillID: id, Value: 0})
		}
	}
}

// TickCooldowns уменьшает перезарядку умений на 1. Вызывается один раз за сегмент хода владельца.
func TickCooldowns(e *domain.Entity, events *domain.EventBuffer) {
	if e.Skills == nil {
		return
	}
	for i := range e.Skills.Slots {
		slot := &e.Skills.Slots[i]
		if slot.CooldownRemaining > 0 {
			slot.CooldownRemaining--
			events.CooldownChanged(e, slot)
		}
	}
}
