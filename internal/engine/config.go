package engine

import (
	"hextactics-server/internal/domain"

	"github.com/google/uuid"
)

// Config хранит параметры запуска симуляции
type Config struct {
	// Seed - мастер-зерно. От него зависят ID сущностей и случайный спавн на всех картах.
	Seed string
	// MapID - стартовая карта. Пусто = Rules.StartMap.
	MapID string
	// Actor - отслеживаемый персонаж
	Actor domain.ActorState
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed: uuid.NewString(),
	}
}
