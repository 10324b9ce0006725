package domain

import (
	"encoding/json"
	"fmt"

	"hextactics-server/pkg/hexgrid"
)

// EventType - Внутренний числовой идентификатор события
type EventType uint8

const (
	EventUnknown EventType = iota
	EventCombatLog
	EventStatsChanged
	EventPositionChanged
	EventCooldownChanged
	EventStatusChanged
	EventIntentDeclared
	EventEntityRemoved
	EventEntityRevealed
	EventPhaseChanged
	EventMapTransition
	EventGameOver
)

// Маппинг для логов Domain -> String
var eventTypeToString = map[EventType]string{
	EventCombatLog:       "COMBAT_LOG",
	EventStatsChanged:    "STATS_CHANGED",
	EventPositionChanged: "POSITION_CHANGED",
	EventCooldownChanged: "COOLDOWN_CHANGED",
	EventStatusChanged:   "STATUS_CHANGED",
	EventIntentDeclared:  "INTENT_DECLARED",
	EventEntityRemoved:   "ENTITY_REMOVED",
	EventEntityRevealed:  "ENTITY_REVEALED",
	EventPhaseChanged:    "PHASE_CHANGED",
	EventMapTransition:   "MAP_TRANSITION",
	EventGameOver:        "GAME_OVER",
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (t EventType) String() string {
	if val, ok := eventTypeToString[t]; ok {
		return val
	}
	return "UNKNOWN"
}

func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// LogLevel - классификация записи боевого лога
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogDamage  LogLevel = "damage"
	LogWarning LogLevel = "warning"
	LogDeath   LogLevel = "death"
	LogEvent   LogLevel = "event"
)

// Event - уведомление для внешнего мира (HUD, транспорт, тесты).
// Заполняются только поля, относящиеся к типу события.
type Event struct {
	Type     EventType       `json:"type"`
	Level    LogLevel        `json:"level,omitempty"`
	Text     string          `json:"text,omitempty"`
	EntityID EntityID        `json:"entityId,omitempty"`
	TargetID EntityID        `json:"targetId,omitempty"`
	Pos      *hexgrid.Hex    `json:"pos,omitempty"`
	Stats    *StatsComponent `json:"stats,omitempty"`
	SkillID  string          `json:"skillId,omitempty"`
	Value    int             `json:"value,omitempty"`
	Intent   *Intent         `json:"intent,omitempty"`
	Phase    string          `json:"phase,omitempty"`
	MapID    string          `json:"mapId,omitempty"`
}

// EventBuffer - список событий, накопленных за один resolve.
// Забирается встраивающим приложением через Drain.
type EventBuffer struct {
	events []Event
}

func (b *EventBuffer) Emit(ev Event) {
	b.events = append(b.events, ev)
}

// Log - запись боевого лога
func (b *EventBuffer) Log(level LogLevel, source EntityID, format string, args ...interface{}) {
	b.Emit(Event{
		Type:     EventCombatLog,
		Level:    level,
		EntityID: source,
		Text:     fmt.Sprintf(format, args...),
	})
}

func (b *EventBuffer) StatsChanged(e *Entity) {
	b.Emit(Event{Type: EventStatsChanged, EntityID: e.ID, Stats: e.Stats.Snapshot()})
}

func (b *EventBuffer) PositionChanged(e *Entity) {
	pos := e.Pos
	b.Emit(Event{Type: EventPositionChanged, EntityID: e.ID, Pos: &pos})
}

func (b *EventBuffer) CooldownChanged(e *Entity, slot *SkillSlot) {
	b.Emit(Event{Type: EventCooldownChanged, EntityID: e.ID, SkillID: slot.ID, Value: slot.CooldownRemaining})
}

// Len - сколько событий накоплено
func (b *EventBuffer) Len() int {
	return len(b.events)
}

// Peek - события без очистки (для тестов и откатов)
func (b *EventBuffer) Peek() []Event {
	return b.events
}

// Truncate откатывает буфер до n событий
func (b *EventBuffer) Truncate(n int) {
	if n < len(b.events) {
		b.events = b.events[:n]
	}
}

// Drain забирает накопленные события и очищает буфер
func (b *EventBuffer) Drain() []Event {
	out := b.events
	b.events = nil
	return out
}
