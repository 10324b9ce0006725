package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"hextactics-server/pkg/hexgrid"
)

// --- Статические таблицы контента ---
// Rules - неизменяемый после загрузки бандл. Передается в симуляцию явно,
// поэтому несколько симуляций (и проверок реплеев) живут в одном процессе.

type TrapTrigger string

const TriggerOnEnter TrapTrigger = "onEnter"

type EffectType string

const (
	EffectMovement    EffectType = "movement"
	EffectDamage      EffectType = "damage"
	EffectApplyStatus EffectType = "apply_status"
)

type TargetMode string

const (
	TargetSelf   TargetMode = "self"
	TargetSingle TargetMode = "single"
	TargetArea   TargetMode = "area"
)

// EffectDef - один эффект умения или ловушки. Применяются в объявленном порядке.
type EffectDef struct {
	Type       EffectType `json:"type" yaml:"type"`
	Mode       TargetMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Amount     int        `json:"amount,omitempty" yaml:"amount,omitempty"`
	Multiplier float64    `json:"multiplier,omitempty" yaml:"multiplier,omitempty"` // 0 = 1
	Radius     int        `json:"radius,omitempty" yaml:"radius,omitempty"`
	Status     string     `json:"status,omitempty" yaml:"status,omitempty"`
	Duration   int        `json:"duration,omitempty" yaml:"duration,omitempty"` // 0 = из StatusDef
}

// ScaledAmount - Amount × Multiplier, округление вниз
func (e EffectDef) ScaledAmount(base int) int {
	m := e.Multiplier
	if m == 0 {
		m = 1
	}
	v := float64(base) * m
	if v < 0 {
		return 0
	}
	return int(v)
}

type StatModifier struct {
	Stat  string `json:"stat" yaml:"stat"`
	Delta int    `json:"delta" yaml:"delta"`
}

type StatusTickEffect struct {
	Damage int `json:"damage,omitempty" yaml:"damage,omitempty"`
	Heal   int `json:"heal,omitempty" yaml:"heal,omitempty"`
}

type StatusDef struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Duration  int              `json:"duration" yaml:"duration"`
	Modifiers []StatModifier   `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Tick      StatusTickEffect `json:"tick" yaml:"tick"`
}

type SkillDef struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	APCost      int         `json:"apCost" yaml:"apCost"`
	MPCost      int         `json:"mpCost" yaml:"mpCost"`
	Cooldown    int         `json:"cooldown" yaml:"cooldown"`
	Range       int         `json:"range" yaml:"range"`
	RequiresLOS bool        `json:"requiresLos" yaml:"requiresLos"`
	Effects     []EffectDef `json:"effects" yaml:"effects"`
}

// InteractEffect - эффект костра/алтаря: heal, restore_mp, restore_ap
type InteractEffect struct {
	Type   string `json:"type" yaml:"type"`
	Amount int    `json:"amount" yaml:"amount"`
}

type RuleAction string

const (
	RuleAttack   RuleAction = "attack"
	RuleSkill    RuleAction = "skill"
	RuleApproach RuleAction = "approach"
	RulePass     RuleAction = "pass"
)

// RuleDef - одно правило поведения. MaxDistance 0 = без ограничения.
type RuleDef struct {
	Action      RuleAction `json:"action" yaml:"action"`
	MaxDistance int        `json:"maxDistance,omitempty" yaml:"maxDistance,omitempty"`
	Skill       string     `json:"skill,omitempty" yaml:"skill,omitempty"`
}

type RuleSet struct {
	ID    string    `json:"id" yaml:"id"`
	Rules []RuleDef `json:"rules" yaml:"rules"`
}

// Blueprint - именованный шаблон сущности: список компонентов + значения по умолчанию
type Blueprint struct {
	ID             string          `json:"id" yaml:"id"`
	Kind           EntityKind      `json:"kind" yaml:"kind"`
	Name           string          `json:"name" yaml:"name"`
	Components     []string        `json:"components" yaml:"components"`
	BlocksMovement bool            `json:"blocksMovement" yaml:"blocksMovement"`
	Concealed      bool            `json:"concealed" yaml:"concealed"`
	ZIndex         int             `json:"zIndex" yaml:"zIndex"`
	AttackRange    int             `json:"attackRange,omitempty" yaml:"attackRange,omitempty"`
	MovementRange  int             `json:"movementRange,omitempty" yaml:"movementRange,omitempty"`
	Stats          *StatsComponent `json:"stats,omitempty" yaml:"stats,omitempty"`
	Skills         []string        `json:"skills,omitempty" yaml:"skills,omitempty"`
	RuleSet        string          `json:"ruleSet,omitempty" yaml:"ruleSet,omitempty"`

	TrapEffects  []EffectDef     `json:"trapEffects,omitempty" yaml:"trapEffects,omitempty"`
	Reusable     bool            `json:"reusable,omitempty" yaml:"reusable,omitempty"`
	Interact     *InteractEffect `json:"interact,omitempty" yaml:"interact,omitempty"`
	Uses         int             `json:"uses,omitempty" yaml:"uses,omitempty"`
	NextMapID    string          `json:"nextMapId,omitempty" yaml:"nextMapId,omitempty"`
	Difficulty   int             `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	FullRange    int             `json:"fullRange,omitempty" yaml:"fullRange,omitempty"`
	PartialRange int             `json:"partialRange,omitempty" yaml:"partialRange,omitempty"`
}

// Archetype - класс персонажа игрока, накладывается поверх блюпринта player
type Archetype struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Stats         StatsComponent `json:"stats" yaml:"stats"`
	Skills        []string       `json:"skills" yaml:"skills"`
	MovementRange int            `json:"movementRange,omitempty" yaml:"movementRange,omitempty"`
	AttackRange   int            `json:"attackRange,omitempty" yaml:"attackRange,omitempty"`
}

// SpawnOverrides - поля записи карты, перекрывающие блюпринт. nil = не задано.
type SpawnOverrides struct {
	Name           *string  `json:"name,omitempty" yaml:"name,omitempty"`
	HP             *int     `json:"hp,omitempty" yaml:"hp,omitempty"`
	Attack         *int     `json:"attack,omitempty" yaml:"attack,omitempty"`
	Defense        *int     `json:"defense,omitempty" yaml:"defense,omitempty"`
	XP             *int     `json:"xp,omitempty" yaml:"xp,omitempty"`
	Level          *int     `json:"level,omitempty" yaml:"level,omitempty"`
	AttackRange    *int     `json:"attackRange,omitempty" yaml:"attackRange,omitempty"`
	BlocksMovement *bool    `json:"blocksMovement,omitempty" yaml:"blocksMovement,omitempty"`
	Concealed      *bool    `json:"concealed,omitempty" yaml:"concealed,omitempty"`
	ZIndex         *int     `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	RuleSet        *string  `json:"ruleSet,omitempty" yaml:"ruleSet,omitempty"`
	Skills         []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	Difficulty     *int     `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	NextMapID      *string  `json:"nextMapId,omitempty" yaml:"nextMapId,omitempty"`
	Reusable       *bool    `json:"reusable,omitempty" yaml:"reusable,omitempty"`
	Uses           *int     `json:"uses,omitempty" yaml:"uses,omitempty"`
	Amount         *int     `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// SpawnEntry - запись карты {type,q,r,...overrides}. Random = место выбирает SeededRNG.
type SpawnEntry struct {
	Type           string `json:"type" yaml:"type"`
	Q              int    `json:"q" yaml:"q"`
	R              int    `json:"r" yaml:"r"`
	Random         bool   `json:"random,omitempty" yaml:"random,omitempty"`
	SpawnOverrides `yaml:",inline"`
}

func (s SpawnEntry) Pos() hexgrid.Hex {
	return hexgrid.Hex{Q: s.Q, R: s.R}
}

type MapEntities struct {
	Enemies   []SpawnEntry `json:"enemies" yaml:"enemies"`
	Traps     []SpawnEntry `json:"traps" yaml:"traps"`
	Campfires []SpawnEntry `json:"campfires" yaml:"campfires"`
	Portals   []SpawnEntry `json:"portals" yaml:"portals"`
}

// All - записи в фиксированном порядке загрузки
func (m MapEntities) All() []SpawnEntry {
	out := make([]SpawnEntry, 0, len(m.Enemies)+len(m.Traps)+len(m.Campfires)+len(m.Portals))
	out = append(out, m.Enemies...)
	out = append(out, m.Traps...)
	out = append(out, m.Campfires...)
	out = append(out, m.Portals...)
	return out
}

type MapTemplate struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Shape       hexgrid.Shape `json:"gridShape" yaml:"gridShape"`
	Obstacles   []hexgrid.Hex `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	PlayerStart hexgrid.Hex   `json:"playerStart" yaml:"playerStart"`
	Entities    MapEntities   `json:"entities" yaml:"entities"`
}

type Costs struct {
	MoveAP     int `json:"moveAp" yaml:"moveAp"`
	AttackAP   int `json:"attackAp" yaml:"attackAp"`
	InteractAP int `json:"interactAp" yaml:"interactAp"`
}

type Progression struct {
	XPPerLevel     int `json:"xpPerLevel" yaml:"xpPerLevel"`
	DefaultXP      int `json:"defaultXp" yaml:"defaultXp"`
	HPPerLevel     int `json:"hpPerLevel" yaml:"hpPerLevel"`
	AttackPerLevel int `json:"attackPerLevel" yaml:"attackPerLevel"`
}

type Rules struct {
	Costs       Costs                  `json:"costs" yaml:"costs"`
	Progression Progression            `json:"progression" yaml:"progression"`
	StartMap    string                 `json:"startMap" yaml:"startMap"`
	Blueprints  map[string]Blueprint   `json:"blueprints" yaml:"blueprints"`
	Archetypes  map[string]Archetype   `json:"archetypes" yaml:"archetypes"`
	Skills      map[string]SkillDef    `json:"skills" yaml:"skills"`
	Statuses    map[string]StatusDef   `json:"statuses" yaml:"statuses"`
	RuleSets    map[string]RuleSet     `json:"ruleSets" yaml:"ruleSets"`
	Maps        map[string]MapTemplate `json:"maps" yaml:"maps"`
}

// --- Поиск с ConfigurationError ---

func (r *Rules) Blueprint(id string) (Blueprint, error) {
	bp, ok := r.Blueprints[id]
	if !ok {
		return Blueprint{}, &ConfigurationError{Kind: "blueprint", ID: id}
	}
	return bp, nil
}

func (r *Rules) Archetype(id string) (Archetype, error) {
	a, ok := r.Archetypes[id]
	if !ok {
		return Archetype{}, &ConfigurationError{Kind: "archetype", ID: id}
	}
	return a, nil
}

func (r *Rules) Skill(id string) (SkillDef, error) {
	s, ok := r.Skills[id]
	if !ok {
		return SkillDef{}, &ConfigurationError{Kind: "skill", ID: id}
	}
	return s, nil
}

func (r *Rules) Status(id string) (StatusDef, error) {
	s, ok := r.Statuses[id]
	if !ok {
		return StatusDef{}, &ConfigurationError{Kind: "status", ID: id}
	}
	return s, nil
}

func (r *Rules) RuleSet(id string) (RuleSet, error) {
	rs, ok := r.RuleSets[id]
	if !ok {
		return RuleSet{}, &ConfigurationError{Kind: "ruleSet", ID: id}
	}
	return rs, nil
}

func (r *Rules) Map(id string) (MapTemplate, error) {
	m, ok := r.Maps[id]
	if !ok {
		return MapTemplate{}, &ConfigurationError{Kind: "map", ID: id}
	}
	return m, nil
}

// Validate проверяет перекрестные ссылки. Битые ссылки на блюпринты в картах
// не фатальны (сущность пропускается при загрузке), остальное - ошибка.
func (r *Rules) Validate() error {
	var errs []error
	if r.Costs.MoveAP <= 0 {
		errs = append(errs, fmt.Errorf("costs.moveAp must be positive, got %d", r.Costs.MoveAP))
	}
	if r.Costs.AttackAP < 0 || r.Costs.InteractAP < 0 {
		errs = append(errs, errors.New("costs must not be negative"))
	}
	if r.Progression.XPPerLevel <= 0 {
		errs = append(errs, fmt.Errorf("progression.xpPerLevel must be positive, got %d", r.Progression.XPPerLevel))
	}
	if _, ok := r.Blueprints["player"]; !ok {
		errs = append(errs, &ConfigurationError{Kind: "blueprint", ID: "player"})
	}
	if r.StartMap != "" {
		if _, err := r.Map(r.StartMap); err != nil {
			errs = append(errs, err)
		}
	}

	for id, bp := range r.Blueprints {
		for _, c := range bp.Components {
			if _, ok := ParseComponentKind(c); !ok {
				errs = append(errs, fmt.Errorf("blueprint %s: unknown component %q", id, c))
			}
		}
		for _, s := range bp.Skills {
			if _, err := r.Skill(s); err != nil {
				errs = append(errs, fmt.Errorf("blueprint %s: %w", id, err))
			}
		}
		if bp.RuleSet != "" {
			if _, err := r.RuleSet(bp.RuleSet); err != nil {
				errs = append(errs, fmt.Errorf("blueprint %s: %w", id, err))
			}
		}
		errs = append(errs, r.validateEffects("blueprint "+id, bp.TrapEffects)...)
	}
	for id, a := range r.Archetypes {
		for _, s := range a.Skills {
			if _, err := r.Skill(s); err != nil {
				errs = append(errs, fmt.Errorf("archetype %s: %w", id, err))
			}
		}
	}
	for id, s := range r.Skills {
		errs = append(errs, r.validateEffects("skill "+id, s.Effects)...)
	}
	for id, rs := range r.RuleSets {
		for _, rule := range rs.Rules {
			if rule.Action == RuleSkill {
				if _, err := r.Skill(rule.Skill); err != nil {
					errs = append(errs, fmt.Errorf("ruleSet %s: %w", id, err))
				}
			}
		}
	}
	for id, m := range r.Maps {
		if _, err := m.Shape.Cells(); err != nil {
			errs = append(errs, fmt.Errorf("map %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Rules) validateEffects(owner string, effects []EffectDef) []error {
	var errs []error
	for _, e := range effects {
		switch e.Type {
		case EffectMovement, EffectDamage:
		case EffectApplyStatus:
			if _, err := r.Status(e.Status); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", owner, err))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown effect type %q", owner, e.Type))
		}
	}
	return errs
}

// Digest - SHA-256 каноничного JSON бандла. Ключи map сериализуются отсортированными.
func (r *Rules) Digest() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
