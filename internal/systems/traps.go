package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ActivateTrap срабатывает ловушка под victim.
// Одноразовая ловушка после срабатывания убирается с карты.
func ActivateTrap(w *domain.GameWorld, rules *domain.Rules, trap, victim *domain.Entity, events *domain.EventBuffer) *domain.Rejection {
	if trap.Trap == nil {
		return domain.Reject("%s - не ловушка.", trap.Name)
	}
	if trap.Trap.Triggered && !trap.Trap.Reusable {
		return domain.Reject("%s уже сработала.", trap.Name)
	}

	trapLogger := logger.Log.WithFields(logrus.Fields{
		"component": "trap_system",
		"trap_id":   trap.ID,
		"victim_id": victim.ID,
	})

	trap.Trap.Triggered = true
	if trap.Detection != nil {
		trap.Detection.Detected = true
	}
	events.Log(domain.LogWarning, trap.ID, "%s срабатывает под %s!", trap.Name, victim.Name)

	for _, eff := range trap.Trap.Effects {
		if victim.IsRemoved() || victim.Stats == nil || !victim.IsAlive() {
			break
		}
		switch eff.Type {
		case domain.EffectDamage:
			amount := eff.ScaledAmount(eff.Amount)
			events.Log(domain.LogDamage, trap.ID, "%s получает %d урона.", victim.Name, amount)
			DealDamage(w, rules, nil, victim, amount, events)
		case domain.EffectApplyStatus:
			if err := ApplyStatus(rules, victim, eff.Status, eff.Duration, events); err != nil {
				trapLogger.WithError(err).Error("Trap effect skipped.")
			}
		default:
			trapLogger.WithField("effect", eff.Type).Warn("Trap effect type is not supported.")
		}
	}

	if !trap.Trap.Reusable {
		RemoveEntity(w, trap, events)
	}
	trapLogger.WithField("reusable", trap.Trap.Reusable).Debug("Trap activated.")
	return nil
}
