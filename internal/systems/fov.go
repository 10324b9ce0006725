package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ComputeVisibility обновляет туман войны вокруг origin.
// Клетки в partialRange с прямой видимостью: до fullRange - full, дальше - partial.
// Туман монотонный: full откатывается только до partial, hidden никогда не возвращается.
// Клетки вне досягаемости сохраняют прежнее состояние.
// Возвращает число клеток, чье состояние изменилось.
func ComputeVisibility(w *domain.GameWorld, origin hexgrid.Hex, fullRange, partialRange int) int {
	if partialRange < fullRange {
		partialRange = fullRange
	}

	changed := 0
	for _, h := range hexgrid.Range(origin, partialRange) {
		t := w.TileAt(h)
		if t == nil {
			continue
		}
		if !HasLineOfSight(w, origin, h) {
			continue
		}

		next := domain.VisibilityPartial
		if hexgrid.Distance(origin, h) <= fullRange {
			next = domain.VisibilityFull
		}
		if t.Visibility != next {
			t.Visibility = next
			changed++
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"component":     "fov_system",
		"observer_pos":  origin,
		"full_range":    fullRange,
		"partial_range": partialRange,
		"changed":       changed,
	}).Debug("Visibility recomputed.")

	return changed
}

// UpdateVisibility пересчитывает туман для сущности с компонентом Visibility.
// Повторный вызов с той же позиции ничего не делает.
func UpdateVisibility(w *domain.GameWorld, e *domain.Entity) int {
	if e.Visibility == nil {
		return 0
	}
	if e.Visibility.LastOrigin != nil && *e.Visibility.LastOrigin == e.Pos {
		return 0
	}
	pos := e.Pos
	e.Visibility.LastOrigin = &pos
	return ComputeVisibility(w, e.Pos, e.Visibility.FullRange, e.Visibility.PartialRange)
}
