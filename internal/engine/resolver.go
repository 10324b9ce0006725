package engine

import (
	"encoding/json"
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/engine/handlers/actions"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Resolver - единая точка исполнения действий. Через него идут и действия
// игрока (живые и из реплея), и намерения AI.
type Resolver struct {
	rules    *domain.Rules
	handlers map[domain.ActionType]handlers.HandlerFunc
	decoders map[domain.ActionType]handlers.Decoder
	log      *logrus.Entry
}

func NewResolver(rules *domain.Rules) *Resolver {
	return &Resolver{
		rules:    rules,
		handlers: actions.Handlers(),
		decoders: actions.Decoders(),
		log:      logger.Component("resolver"),
	}
}

// Decode разбирает запись лога {type, details} в действие.
// Ошибка здесь - нарушение целостности лога, а не отказ.
func (r *Resolver) Decode(typ string, details json.RawMessage) (domain.Action, error) {
	actionType := domain.ParseAction(typ)
	decode, ok := r.decoders[actionType]
	if !ok {
		return domain.Action{}, fmt.Errorf("unknown action type %q", typ)
	}
	a, err := decode(details)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%s: %w", typ, err)
	}
	return a, nil
}

// Resolve исполняет действие actor в мире w. Отказ пишется в боевой лог
// предупреждением, события отказавшего обработчика откатываются.
func (r *Resolver) Resolve(w *domain.GameWorld, actor *domain.Entity, a domain.Action, events *domain.EventBuffer) handlers.Result {
	if actor == nil || actor.IsRemoved() || !actor.IsAlive() {
		return handlers.Reject("Действовать некому.")
	}

	handler, ok := r.handlers[a.Type]
	if !ok {
		return handlers.Reject("Неизвестное действие %s.", a.Type)
	}

	mark := events.Len()
	res := handler(handlers.Context{
		World:  w,
		Rules:  r.rules,
		Actor:  actor,
		Events: events,
	}, a)

	fields := logrus.Fields{
		"actor_id": actor.ID,
		"action":   a.String(),
	}
	if res.Rejected != nil {
		events.Truncate(mark)
		events.Log(domain.LogWarning, actor.ID, "%s", res.Rejected.Reason)
		r.log.WithFields(fields).WithField("reason", res.Rejected.Reason).Debug("Action rejected")
		return res
	}

	r.log.WithFields(fields).Debug("Action resolved")
	return res
}
