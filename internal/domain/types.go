package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityKind - Тип сущности на карте
type EntityKind uint8

const (
	KindUnknown EntityKind = iota
	KindPlayer
	KindEnemy
	KindTrap
	KindInteractable
	KindPortal
)

var kindStringToType = map[string]EntityKind{
	"player":       KindPlayer,
	"enemy":        KindEnemy,
	"trap":         KindTrap,
	"interactable": KindInteractable,
	"portal":       KindPortal,
}

var kindTypeToString = map[EntityKind]string{
	KindPlayer:       "player",
	KindEnemy:        "enemy",
	KindTrap:         "trap",
	KindInteractable: "interactable",
	KindPortal:       "portal",
}

// ParseEntityKind конвертирует строку из контента в EntityKind
func ParseEntityKind(s string) EntityKind {
	if val, ok := kindStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return KindUnknown
}

func (k EntityKind) String() string {
	if val, ok := kindTypeToString[k]; ok {
		return val
	}
	return "unknown"
}

func (k EntityKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EntityKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ParseEntityKind(s)
	return nil
}

func (k EntityKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *EntityKind) UnmarshalText(text []byte) error {
	*k = ParseEntityKind(string(text))
	if *k == KindUnknown {
		return fmt.Errorf("unknown entity kind %q", text)
	}
	return nil
}

// IDPrefix - префикс детерминированного ID для каждого типа.
func (k EntityKind) IDPrefix() string {
	switch k {
	case KindPlayer:
		return "p_"
	case KindEnemy:
		return "e_"
	case KindTrap:
		return "t_"
	case KindInteractable:
		return "i_"
	case KindPortal:
		return "g_"
	}
	return "x_"
}

// ComponentKind - закрытый список компонентов.
// Проверка наличия компонента = проверка указателя, без рефлексии.
type ComponentKind uint8

const (
	CompStats ComponentKind = iota
	CompMovement
	CompSkills
	CompBehavior
	CompStatusEffects
	CompTrap
	CompInteractable
	CompPortal
	CompDetection
	CompVisibility
)

var componentNames = map[ComponentKind]string{
	CompStats:         "stats",
	CompMovement:      "movement",
	CompSkills:        "skills",
	CompBehavior:      "behavior",
	CompStatusEffects: "statusEffects",
	CompTrap:          "trap",
	CompInteractable:  "interactable",
	CompPortal:        "portal",
	CompDetection:     "detection",
	CompVisibility:    "visibility",
}

func (c ComponentKind) String() string {
	if val, ok := componentNames[c]; ok {
		return val
	}
	return "unknown"
}

// ParseComponentKind ищет компонент по имени из блюпринта.
func ParseComponentKind(s string) (ComponentKind, bool) {
	for k, name := range componentNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return 0, false
}

// TileVisibility - состояние тумана войны для клетки
type TileVisibility uint8

const (
	VisibilityHidden TileVisibility = iota
	VisibilityPartial
	VisibilityFull
)

func (v TileVisibility) String() string {
	switch v {
	case VisibilityPartial:
		return "partial"
	case VisibilityFull:
		return "full"
	}
	return "hidden"
}

func (v TileVisibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}
