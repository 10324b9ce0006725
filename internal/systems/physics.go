package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// HasLineOfSight проверяет прямую видимость между двумя клетками.
// Трассируем hex-линию; блокирует любая промежуточная стена или отсутствующая клетка.
// Стартовая и конечная клетки не проверяются.
func HasLineOfSight(w *domain.GameWorld, a, b hexgrid.Hex) bool {
	if a == b {
		return true
	}

	line := hexgrid.Line(a, b)
	for _, h := range line[1 : len(line)-1] {
		t := w.TileAt(h)
		if t == nil || t.IsObstacle {
			if logger.Log.IsLevelEnabled(logrus.TraceLevel) {
				logger.Log.WithFields(logrus.Fields{
					"component":      "physics_system",
					"start_pos":      a,
					"end_pos":        b,
					"blocking_point": h,
				}).Trace("Line of sight blocked.")
			}
			return false
		}
	}
	return true
}
