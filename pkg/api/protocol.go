package api

import (
	"encoding/json"
)

// Типы ответов сервера
const (
	TypeUpdate  = "UPDATE"
	TypeError   = "ERROR"
	TypeVerdict = "VERDICT"
)

// ActionInit - служебная команда: прислать снимок, ход не тратит
const ActionInit = "init"

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Снимок видимой части карты плюс события, накопленные с прошлого ответа.
type ServerResponse struct {
	// Type тип сообщения: "UPDATE", "ERROR", "VERDICT".
	Type string `json:"type"`

	// Turn номер хода игрока, Phase - фаза координатора ходов.
	Turn  int    `json:"turn"`
	Phase string `json:"phase"`

	MapID string `json:"mapId,omitempty"`

	// MyEntityID ID сущности, которой управляет данный клиент.
	MyEntityID string `json:"myEntityId,omitempty"`

	// Map срез всех тайлов, кроме скрытых туманом.
	Map []TileView `json:"map,omitempty"`

	// Entities срез всех видимых сущностей.
	Entities []EntityView `json:"entities,omitempty"`

	// Events уведомления ядра (лог боя, изменения статов, намерения AI).
	Events []EventView `json:"events,omitempty"`

	// Error причина отказа, если действие не прошло проверку.
	Error string `json:"error,omitempty"`
}

// Coords - осевые координаты гекса.
type Coords struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// TileView это DTO для одного тайла карты.
type TileView struct {
	Q          int    `json:"q"`
	R          int    `json:"r"`
	IsObstacle bool   `json:"isObstacle"`
	Visibility string `json:"visibility"` // partial, full
}

// EntityView это DTO для игровой сущности.
type EntityView struct {
	ID     string      `json:"id"`
	Kind   string      `json:"kind"` // player, enemy, trap, interactable, portal
	Name   string      `json:"name"`
	Pos    Coords      `json:"pos"`
	Stats  *StatsView  `json:"stats,omitempty"`
	Skills []SkillView `json:"skills,omitempty"`

	// Intent объявленное намерение AI на следующую фазу врагов (телеграф).
	Intent *IntentView `json:"intent,omitempty"`
}

// StatsView это DTO для характеристик сущности.
// Чужие сущности отдаются без боевых характеристик.
type StatsView struct {
	HP      int  `json:"hp"`
	MaxHP   int  `json:"maxHp"`
	MP      int  `json:"mp,omitempty"`
	MaxMP   int  `json:"maxMp,omitempty"`
	AP      int  `json:"ap,omitempty"`
	MaxAP   int  `json:"maxAp,omitempty"`
	Attack  int  `json:"attack,omitempty"`
	Defense int  `json:"defense,omitempty"`
	XP      int  `json:"xp,omitempty"`
	Level   int  `json:"level,omitempty"`
	IsDead  bool `json:"isDead"`
}

type SkillView struct {
	ID                string `json:"id"`
	APCost            int    `json:"apCost"`
	MPCost            int    `json:"mpCost"`
	CooldownRemaining int    `json:"cooldownRemaining"`
}

type IntentView struct {
	Kind     string  `json:"kind"`
	Target   *Coords `json:"target,omitempty"`
	TargetID string  `json:"targetId,omitempty"`
	SkillID  string  `json:"skillId,omitempty"`
}

// EventView - событие ядра в виде для клиента.
type EventView struct {
	Type     string          `json:"type"`
	Level    string          `json:"level,omitempty"`
	Text     string          `json:"text,omitempty"`
	EntityID string          `json:"entityId,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID сущности, от имени которой выполняется действие.
	// Сервер сверяет его с игроком сессии.
	Token string `json:"token,omitempty"`

	// Action - тип записи лога: move, attack, interactWithEntity, skill, playerInput, endTurn.
	// Плюс служебный "init" (прислать снимок, ход не тратит).
	Action string `json:"action"`

	// Payload - details записи лога. Структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// LoginPayload - payload первой команды (init) при подключении.
// Пустой Seed - сервер выберет случайный.
type LoginPayload struct {
	Seed      string `json:"seed,omitempty"`
	MapID     string `json:"mapId,omitempty"`
	Archetype string `json:"archetype,omitempty"`
	Name      string `json:"name,omitempty"`
}

// --- Payloads (details записей лога) ---

// CoordsPayload используется для move и playerInput.
type CoordsPayload struct {
	TargetCoords *Coords `json:"targetCoords"`
}

// EntityPayload используется для действий, нацеленных на другую сущность (attack, interactWithEntity).
type EntityPayload struct {
	TargetID string `json:"targetId"`
}

// SkillPayload - умение по клетке или по сущности. Без цели - на себя.
type SkillPayload struct {
	SkillID      string  `json:"skillId"`
	TargetCoords *Coords `json:"targetCoords,omitempty"`
	TargetID     string  `json:"targetId,omitempty"`
}

// --- Проверка реплеев ---

// VerifyResponse - вердикт проверки присланной сессии.
type VerifyResponse struct {
	Type     string          `json:"type"` // VERDICT
	ID       string          `json:"id"`
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason,omitempty"`
	Index    *int            `json:"index,omitempty"` // индекс записи лога при IntegrityError
	Stats    json.RawMessage `json:"stats,omitempty"`
	Digest   string          `json:"digest,omitempty"`
	Turn     int             `json:"turn"`
	Phase    string          `json:"phase,omitempty"`
	Applied  int             `json:"applied"`
	Rejected int             `json:"rejected"`
}
