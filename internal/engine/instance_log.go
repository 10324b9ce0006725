package engine

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// logEvents дублирует отданные наружу события в журнал сервера
func (i *Instance) logEvents(evs []domain.Event) {
	if !logger.Log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, ev := range evs {
		entry := logger.Log.WithFields(logrus.Fields{
			"instance":  i.ID,
			"component": "game_log",
			"event":     ev.Type.String(),
		})
		if ev.EntityID != "" {
			entry = entry.WithField("entity_id", ev.EntityID)
		}
		if ev.Type == domain.EventCombatLog {
			entry.WithField("log_type", ev.Level).Debug(ev.Text)
			continue
		}
		entry.Debug("event")
	}
}
