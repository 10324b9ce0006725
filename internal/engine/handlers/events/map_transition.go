package events

import (
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/pkg/dungeon"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// TransitionContext - то, что нужно для пересборки карты
type TransitionContext struct {
	Rules   *domain.Rules
	Builder func(tmpl domain.MapTemplate) *dungeon.LevelBuilder
	World   *domain.GameWorld
	Player  *domain.Entity
	Events  *domain.EventBuffer
}

// HandleMapTransition переносит игрока на карту NextMapID.
// Старый индекс клеток и сущностей выбрасывается целиком, экземпляр игрока
// сохраняется вместе со всеми компонентами.
func HandleMapTransition(ctx TransitionContext, t handlers.Transition) (*domain.GameWorld, error) {
	tmpl, err := ctx.Rules.Map(t.NextMapID)
	if err != nil {
		return nil, err
	}

	oldMap := ctx.World.MapID
	player := ctx.Player

	// 1. "Выписываемся" из старого мира, остальных уничтожаем
	ctx.World.Detach(player)
	for _, e := range ctx.World.Entities() {
		ctx.World.UnregisterEntity(e)
	}

	// 2. Собираем новый мир с тем же игроком
	newWorld, err := ctx.Builder(tmpl).WithPlayer(player).Build()
	if err != nil {
		return nil, fmt.Errorf("transition to %s: %w", tmpl.ID, err)
	}

	pos := player.Pos
	ctx.Events.Emit(domain.Event{Type: domain.EventMapTransition, EntityID: player.ID, MapID: tmpl.ID, Pos: &pos})
	ctx.Events.Log(domain.LogEvent, player.ID, "%s спускается глубже: %s.", player.Name, tmpl.Name)

	logger.Log.WithFields(logrus.Fields{
		"component": "events",
		"player_id": player.ID,
		"from":      oldMap,
		"to":        tmpl.ID,
		"portal_id": t.PortalID,
	}).Info("Map transition")

	return newWorld, nil
}
