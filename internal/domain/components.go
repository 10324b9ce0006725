package domain

import "hextactics-server/pkg/hexgrid"

// --- КОМПОНЕНТЫ ---

// StatsComponent - Характеристики и Ресурсы.
// Порядок полей фиксирован: от него зависит каноничный JSON для сверки реплеев.
type StatsComponent struct {
	HP             int     `json:"hp" yaml:"hp"`
	MaxHP          int     `json:"maxHp" yaml:"maxHp"`
	MP             int     `json:"mp" yaml:"mp"`
	MaxMP          int     `json:"maxMp" yaml:"maxMp"`
	AP             int     `json:"ap" yaml:"ap"`
	MaxAP          int     `json:"maxAp" yaml:"maxAp"`
	Attack         int     `json:"attack" yaml:"attack"`
	Defense        int     `json:"defense" yaml:"defense"`
	MagicAttack    int     `json:"magicAttack" yaml:"magicAttack"`
	MagicDefense   int     `json:"magicDefense" yaml:"magicDefense"`
	Accuracy       int     `json:"accuracy" yaml:"accuracy"`
	Evasion        int     `json:"evasion" yaml:"evasion"`
	CritChance     float64 `json:"critChance" yaml:"critChance"`
	CritMultiplier float64 `json:"critMultiplier" yaml:"critMultiplier"`
	XP             int     `json:"xp" yaml:"xp"`
	Level          int     `json:"level" yaml:"level"`
}

// MovementComponent - дальность шага за одно действие (0 = ограничение только по AP)
type MovementComponent struct {
	Range int `json:"range"`
}

// SkillSlot - умение в "руке" сущности
type SkillSlot struct {
	ID                string `json:"id"`
	APCost            int    `json:"apCost"`
	MPCost            int    `json:"mpCost"`
	Cooldown          int    `json:"cooldown"`
	CooldownRemaining int    `json:"cooldownRemaining"`
}

// SkillsComponent - список умений
type SkillsComponent struct {
	Slots []SkillSlot `json:"slots"`
}

// BehaviorComponent - Мозги. Хранит набор правил и объявленное намерение.
type BehaviorComponent struct {
	RuleSet string  `json:"ruleSet"`
	Intent  *Intent `json:"intent,omitempty"`
}

// ActiveStatus - наложенный статус
type ActiveStatus struct {
	ID        string           `json:"id"`
	Modifiers []StatModifier   `json:"modifiers,omitempty"`
	Tick      StatusTickEffect `json:"tick"`
	Remaining int              `json:"remaining"`
}

// StatusEffectsComponent - статус-эффекты по ID
type StatusEffectsComponent struct {
	Active map[string]*ActiveStatus `json:"active"`
}

// TrapComponent - ловушка на клетке
type TrapComponent struct {
	Effects   []EffectDef `json:"effects"`
	Trigger   TrapTrigger `json:"trigger"`
	Reusable  bool        `json:"reusable"`
	Triggered bool        `json:"triggered"`
}

// InteractableComponent - костер, алтарь и т.п.
type InteractableComponent struct {
	Effect InteractEffect `json:"effect"`
	Uses   int            `json:"uses"` // 0 = без ограничений
	Used   int            `json:"used"`
}

// PortalComponent - выход на следующую карту. Пустой NextMapID = финал.
type PortalComponent struct {
	NextMapID string `json:"nextMapId"`
}

// DetectionComponent - скрытность
type DetectionComponent struct {
	Difficulty int  `json:"difficulty"`
	Detected   bool `json:"detected"`
}

// VisibilityComponent - настройки зрения
type VisibilityComponent struct {
	FullRange    int `json:"fullRange"`
	PartialRange int `json:"partialRange"`

	// Позиция, для которой туман уже пересчитан
	LastOrigin *hexgrid.Hex `json:"-"`
}
