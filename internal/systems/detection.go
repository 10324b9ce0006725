package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

// RevealConcealed - обнаружение скрытых сущностей игроком, без RNG.
// Скрытая сущность обнаружена, если стоит рядом с игроком, либо ее клетка
// видна полностью и сложность не выше точности игрока.
func RevealConcealed(w *domain.GameWorld, player *domain.Entity, events *domain.EventBuffer) []*domain.Entity {
	if player == nil || !player.IsAlive() {
		return nil
	}
	accuracy := EffectiveStat(player, "accuracy")

	var revealed []*domain.Entity
	for _, e := range w.Entities() {
		if !e.Concealed || e.Detection == nil || e.Detection.Detected {
			continue
		}
		t := w.TileAt(e.Pos)
		if t == nil {
			continue
		}

		near := hexgrid.Distance(e.Pos, player.Pos) <= 1
		seen := t.Visibility == domain.VisibilityFull && e.Detection.Difficulty <= accuracy
		if !near && !seen {
			continue
		}

		e.Detection.Detected = true
		revealed = append(revealed, e)
		pos := e.Pos
		events.Emit(domain.Event{Type: domain.EventEntityRevealed, EntityID: e.ID, Pos: &pos})
		events.Log(domain.LogEvent, player.ID, "%s замечает: %s.", player.Name, e.Name)
	}
	return revealed
}
