package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"hextactics-server/pkg/hexgrid"
)

// ActionType - Внутренний числовой идентификатор действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionMove
	ActionAttack
	ActionInteract
	ActionSkill
	ActionPlayerInput
	ActionEndTurn
)

// Маппинг для конвертации лога реплея -> Domain (ключи в нижнем регистре)
var actionStringToType = map[string]ActionType{
	"move":               ActionMove,
	"attack":             ActionAttack,
	"interactwithentity": ActionInteract,
	"skill":              ActionSkill,
	"playerinput":        ActionPlayerInput,
	"endturn":            ActionEndTurn,
}

// Маппинг Domain -> String (как пишется в лог реплея)
var actionTypeToString = map[ActionType]string{
	ActionMove:        "move",
	ActionAttack:      "attack",
	ActionInteract:    "interactWithEntity",
	ActionSkill:       "skill",
	ActionPlayerInput: "playerInput",
	ActionEndTurn:     "endTurn",
}

// ParseAction конвертирует строку из лога в ActionType.
// Нечувствительно к регистру.
func ParseAction(s string) ActionType {
	if val, ok := actionStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionTypeToString[a]; ok {
		return val
	}
	return "unknown"
}

func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = ParseAction(s)
	return nil
}

// Action - разобранное действие, которое понимает резолвер
type Action struct {
	Type     ActionType   `json:"type"`
	Target   *hexgrid.Hex `json:"target,omitempty"`
	TargetID EntityID     `json:"targetId,omitempty"`
	SkillID  string       `json:"skillId,omitempty"`
}

func MoveTo(h hexgrid.Hex) Action {
	return Action{Type: ActionMove, Target: &h}
}

func AttackTarget(id EntityID) Action {
	return Action{Type: ActionAttack, TargetID: id}
}

func InteractWith(id EntityID) Action {
	return Action{Type: ActionInteract, TargetID: id}
}

func UseSkillAt(skillID string, h hexgrid.Hex) Action {
	return Action{Type: ActionSkill, SkillID: skillID, Target: &h}
}

func UseSkillOn(skillID string, id EntityID) Action {
	return Action{Type: ActionSkill, SkillID: skillID, TargetID: id}
}

func PlayerInputAt(h hexgrid.Hex) Action {
	return Action{Type: ActionPlayerInput, Target: &h}
}

func EndTurn() Action {
	return Action{Type: ActionEndTurn}
}

func (a Action) String() string {
	switch {
	case a.SkillID != "" && a.Target != nil:
		return fmt.Sprintf("%s %s@%s", a.Type, a.SkillID, a.Target)
	case a.SkillID != "":
		return fmt.Sprintf("%s %s@%s", a.Type, a.SkillID, a.TargetID)
	case a.Target != nil:
		return fmt.Sprintf("%s %s", a.Type, a.Target)
	case a.TargetID != "":
		return fmt.Sprintf("%s %s", a.Type, a.TargetID)
	}
	return a.Type.String()
}

// --- Намерения AI ---

// IntentKind - что AI собирается сделать в следующую фазу врагов
type IntentKind uint8

const (
	IntentPass IntentKind = iota
	IntentAttack
	IntentMove
	IntentSkill
)

func (k IntentKind) String() string {
	switch k {
	case IntentAttack:
		return "attack"
	case IntentMove:
		return "move"
	case IntentSkill:
		return "skill"
	}
	return "pass"
}

func (k IntentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Intent - объявленное действие. Исполняется ровно таким, каким было
// объявлено, без переоценки в момент исполнения.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Action Action     `json:"action"`
	Turn   int        `json:"turn"`
}

func (i Intent) String() string {
	if i.Kind == IntentPass {
		return "pass"
	}
	return i.Action.String()
}
