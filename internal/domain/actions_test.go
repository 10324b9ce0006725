package domain

import (
	"encoding/json"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"move", ActionMove},
		{"MOVE", ActionMove},
		{"attack", ActionAttack},
		{"interactWithEntity", ActionInteract},
		{"interactwithentity", ActionInteract},
		{"skill", ActionSkill},
		{"playerInput", ActionPlayerInput},
		{"endTurn", ActionEndTurn},
		{"WAIT", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionMove, "move"},
		{ActionInteract, "interactWithEntity"},
		{ActionPlayerInput, "playerInput"},
		{ActionUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionType_JSON(t *testing.T) {
	data, err := json.Marshal(ActionSkill)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"skill"` {
		t.Errorf("got %s", data)
	}

	var back ActionType
	if err := json.Unmarshal([]byte(`"endTurn"`), &back); err != nil {
		t.Fatal(err)
	}
	if back != ActionEndTurn {
		t.Errorf("got %v, want endTurn", back)
	}
}
