package engine

import (
	"encoding/json"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/logger"
)

// BuildState создает "снимок" мира для игрока инстанса.
// Клетки под туманом и необнаруженные сущности не попадают в снимок.
func BuildState(inst *Instance, events []domain.Event) api.ServerResponse {
	w := inst.World
	observer := inst.Player

	// 1. Карта (только разведанные клетки)
	mapDTO := make([]api.TileView, 0, len(w.TileOrder))
	for _, h := range w.TileOrder {
		tile := w.TileAt(h)
		if tile.Visibility == domain.VisibilityHidden {
			continue
		}
		mapDTO = append(mapDTO, api.TileView{
			Q:          h.Q,
			R:          h.R,
			IsObstacle: tile.IsObstacle,
			Visibility: tile.Visibility.String(),
		})
	}

	// 2. Сущности: себя видим всегда, остальных - на клетках в полной видимости
	var viewEntities []api.EntityView
	for _, e := range w.Entities() {
		if e == observer {
			viewEntities = append(viewEntities, toEntityView(e, observer))
			continue
		}
		if e.IsHidden() {
			continue
		}
		tile := w.TileAt(e.Pos)
		if tile == nil || tile.Visibility != domain.VisibilityFull {
			continue
		}
		viewEntities = append(viewEntities, toEntityView(e, observer))
	}

	return api.ServerResponse{
		Type:       api.TypeUpdate,
		Turn:       inst.Turns.Turn,
		Phase:      inst.Turns.Phase.String(),
		MapID:      w.MapID,
		MyEntityID: string(observer.ID),
		Map:        mapDTO,
		Entities:   viewEntities,
		Events:     toEventViews(events),
	}
}

func toEntityView(e, observer *domain.Entity) api.EntityView {
	view := api.EntityView{
		ID:   string(e.ID),
		Kind: e.Kind.String(),
		Name: e.Name,
		Pos:  api.Coords{Q: e.Pos.Q, R: e.Pos.R},
	}

	if e.Stats != nil {
		stats := &api.StatsView{
			HP:     e.Stats.HP,
			MaxHP:  e.Stats.MaxHP,
			IsDead: e.Stats.IsDead(),
		}
		// Полные характеристики - только свои
		if e == observer {
			stats.MP = e.Stats.MP
			stats.MaxMP = e.Stats.MaxMP
			stats.AP = e.Stats.AP
			stats.MaxAP = e.Stats.MaxAP
			stats.Attack = e.Stats.Attack
			stats.Defense = e.Stats.Defense
			stats.XP = e.Stats.XP
			stats.Level = e.Stats.Level
		}
		view.Stats = stats
	}

	if e == observer && e.Skills != nil {
		for _, slot := range e.Skills.Slots {
			view.Skills = append(view.Skills, api.SkillView{
				ID:                slot.ID,
				APCost:            slot.APCost,
				MPCost:            slot.MPCost,
				CooldownRemaining: slot.CooldownRemaining,
			})
		}
	}

	if e.Behavior != nil && e.Behavior.Intent != nil {
		view.Intent = toIntentView(*e.Behavior.Intent)
	}
	return view
}

func toIntentView(i domain.Intent) *api.IntentView {
	view := &api.IntentView{
		Kind:     i.Kind.String(),
		TargetID: string(i.Action.TargetID),
		SkillID:  i.Action.SkillID,
	}
	if i.Action.Target != nil {
		view.Target = &api.Coords{Q: i.Action.Target.Q, R: i.Action.Target.R}
	}
	return view
}

func toEventViews(events []domain.Event) []api.EventView {
	out := make([]api.EventView, 0, len(events))
	for _, ev := range events {
		view := api.EventView{
			Type:     ev.Type.String(),
			Level:    string(ev.Level),
			Text:     ev.Text,
			EntityID: string(ev.EntityID),
		}
		if ev.Type != domain.EventCombatLog {
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Log.WithError(err).WithField("event", ev.Type.String()).Warn("Failed to encode event data")
			} else {
				view.Data = data
			}
		}
		out = append(out, view)
	}
	return out
}
