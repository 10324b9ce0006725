package dungeon

import (
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"
	"hextactics-server/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Skipped - запись карты, которую не удалось создать
type Skipped struct {
	Type   string
	Pos    hexgrid.Hex
	Reason string
}

// LevelBuilder предоставляет fluent API для сборки карты из шаблона
type LevelBuilder struct {
	tmpl    domain.MapTemplate
	rules   *domain.Rules
	rng     *utils.SeededRNG
	factory *Factory
	player  *domain.Entity
	skipped []Skipped
	log     *logrus.Entry
}

// NewLevel создает builder для шаблона карты
func NewLevel(tmpl domain.MapTemplate, rules *domain.Rules, rng *utils.SeededRNG) *LevelBuilder {
	return &LevelBuilder{
		tmpl:    tmpl,
		rules:   rules,
		rng:     rng,
		factory: NewFactory(rules, rng),
		log:     logger.Component("builder").WithField("map", tmpl.ID),
	}
}

// WithFactory подменяет фабрику (общая фабрика симуляции)
func (b *LevelBuilder) WithFactory(f *Factory) *LevelBuilder {
	b.factory = f
	return b
}

// WithPlayer ставит игрока на playerStart. Игрок переносится между картами как есть.
func (b *LevelBuilder) WithPlayer(p *domain.Entity) *LevelBuilder {
	b.player = p
	return b
}

// Skipped возвращает пропущенные записи последнего Build
func (b *LevelBuilder) Skipped() []Skipped {
	return b.skipped
}

// Build собирает мир. Порядок создания сущностей: игрок, затем
// enemies, traps, campfires, portals в порядке файла карты.
func (b *LevelBuilder) Build() (*domain.GameWorld, error) {
	cells, err := b.tmpl.Shape.Cells()
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", b.tmpl.ID, err)
	}
	world := domain.NewGameWorld(b.tmpl.ID, cells, b.tmpl.Obstacles)
	b.skipped = nil

	if b.player != nil {
		start := world.TileAt(b.tmpl.PlayerStart)
		if start == nil || start.IsObstacle {
			return nil, fmt.Errorf("map %s: playerStart %s is not a free tile", b.tmpl.ID, b.tmpl.PlayerStart)
		}
		b.player.Pos = b.tmpl.PlayerStart
		if err := world.RegisterEntity(b.player); err != nil {
			return nil, fmt.Errorf("map %s: %w", b.tmpl.ID, err)
		}
	}

	for _, entry := range b.tmpl.Entities.All() {
		b.place(world, entry)
	}

	b.log.WithFields(logrus.Fields{
		"tiles":    len(world.Tiles),
		"entities": len(world.EntityRegistry),
		"skipped":  len(b.skipped),
	}).Info("Map built")

	return world, nil
}

func (b *LevelBuilder) place(world *domain.GameWorld, entry domain.SpawnEntry) {
	bp, err := b.rules.Blueprint(entry.Type)
	if err != nil {
		b.skip(entry, entry.Pos(), err.Error())
		return
	}

	blocks := bp.BlocksMovement
	if entry.BlocksMovement != nil {
		blocks = *entry.BlocksMovement
	}

	pos := entry.Pos()
	if entry.Random {
		free := b.freeTiles(world)
		if len(free) == 0 {
			b.skip(entry, pos, "no free tile")
			return
		}
		// Сначала место, потом ID: так же в реплее
		pos = free[b.rng.Intn(len(free))]
	} else {
		tile := world.TileAt(pos)
		if tile == nil || tile.IsObstacle {
			b.skip(entry, pos, "invalid tile")
			return
		}
		if blocks && world.BlockerAt(pos, nil) != nil {
			b.skip(entry, pos, "tile occupied")
			return
		}
	}

	e, err := b.factory.Spawn(entry.Type, pos, entry.SpawnOverrides)
	if err != nil {
		b.skip(entry, pos, err.Error())
		return
	}
	if err := world.RegisterEntity(e); err != nil {
		b.skip(entry, pos, err.Error())
		return
	}
}

// freeTiles - клетки без препятствий и сущностей, кроме старта игрока.
// Порядок берется из TileOrder, чтобы выбор по RNG был стабильным.
func (b *LevelBuilder) freeTiles(world *domain.GameWorld) []hexgrid.Hex {
	free := make([]hexgrid.Hex, 0, len(world.TileOrder))
	for _, h := range world.TileOrder {
		if world.Tiles[h].IsObstacle || h == b.tmpl.PlayerStart {
			continue
		}
		if len(world.EntitiesAt(h)) > 0 {
			continue
		}
		free = append(free, h)
	}
	return free
}

func (b *LevelBuilder) skip(entry domain.SpawnEntry, pos hexgrid.Hex, reason string) {
	b.skipped = append(b.skipped, Skipped{Type: entry.Type, Pos: pos, Reason: reason})
	b.log.WithFields(logrus.Fields{
		"type":   entry.Type,
		"pos":    pos.String(),
		"reason": reason,
	}).Error("Map entity skipped")
}
