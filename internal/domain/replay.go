package domain

import (
	"encoding/json"
	"time"
)

// ActorState - стартовое состояние отслеживаемого персонажа.
// ID можно не задавать: тогда он генерируется из сида (одинаково в игре и реплее).
type ActorState struct {
	ID        EntityID        `json:"id,omitempty"`
	Archetype string          `json:"archetype"`
	Name      string          `json:"name,omitempty"`
	Stats     *StatsComponent `json:"stats,omitempty"`
	Skills    []string        `json:"skills,omitempty"`
}

// ReplayAction - запись лога действий {type, sourceId, details}.
// Type хранится строкой: неизвестный тип - это ошибка целостности реплея,
// а не молча пропущенное действие.
type ReplayAction struct {
	Type     string          `json:"type"`
	SourceID EntityID        `json:"sourceId"`
	Details  json.RawMessage `json:"details,omitempty"`
}

// ReplaySession - все, что нужно для детерминированного повтора
type ReplaySession struct {
	Seed      string         `json:"seed"`
	MapID     string         `json:"mapId"`
	TrackedID EntityID       `json:"trackedId,omitempty"`
	Actor     ActorState     `json:"actor"`
	Timestamp int64          `json:"timestamp"`
	Actions   []ReplayAction `json:"actions"`
}

// Verdict - итог проверки присланной сессии
type Verdict struct {
	ID        string    `json:"id"`
	Seed      string    `json:"seed"`
	MapID     string    `json:"mapId"`
	TrackedID EntityID  `json:"trackedId"`
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	Index     *int      `json:"index,omitempty"` // запись лога, на которой сломалась целостность
	Stats     []byte    `json:"-"`
	Digest    string    `json:"digest,omitempty"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase,omitempty"`
	Applied   int       `json:"applied"`
	Rejected  int       `json:"rejected"`
	CreatedAt time.Time `json:"createdAt"`
}
