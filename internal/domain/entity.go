package domain

import "hextactics-server/pkg/hexgrid"

// EntityID - детерминированный ID сущности (prefix + hex из SeededRNG)
type EntityID string

// --- СУЩНОСТЬ ---

type Entity struct {
	// Идентификация
	ID        EntityID   `json:"id"`
	Kind      EntityKind `json:"kind"`
	Blueprint string     `json:"blueprint"`
	Name      string     `json:"name"`

	Pos            hexgrid.Hex `json:"pos"`
	BlocksMovement bool        `json:"blocksMovement"`
	Concealed      bool        `json:"concealed"`
	ZIndex         int         `json:"zIndex"`
	AttackRange    int         `json:"attackRange"` // 0 = ближний бой (1)

	// Seq - порядок создания на текущей карте. Определяет порядок ходов AI.
	Seq uint64 `json:"-"`

	// Компоненты (Если nil - значит свойство отсутствует)
	Stats        *StatsComponent         `json:"stats,omitempty"`
	Movement     *MovementComponent      `json:"movement,omitempty"`
	Skills       *SkillsComponent        `json:"skills,omitempty"`
	Behavior     *BehaviorComponent      `json:"behavior,omitempty"`
	Status       *StatusEffectsComponent `json:"status,omitempty"`
	Trap         *TrapComponent          `json:"trap,omitempty"`
	Interactable *InteractableComponent  `json:"interactable,omitempty"`
	Portal       *PortalComponent        `json:"portal,omitempty"`
	Detection    *DetectionComponent     `json:"detection,omitempty"`
	Visibility   *VisibilityComponent    `json:"visibility,omitempty"`

	removed bool
}

// Has - проверка наличия компонента
func (e *Entity) Has(kind ComponentKind) bool {
	switch kind {
	case CompStats:
		return e.Stats != nil
	case CompMovement:
		return e.Movement != nil
	case CompSkills:
		return e.Skills != nil
	case CompBehavior:
		return e.Behavior != nil
	case CompStatusEffects:
		return e.Status != nil
	case CompTrap:
		return e.Trap != nil
	case CompInteractable:
		return e.Interactable != nil
	case CompPortal:
		return e.Portal != nil
	case CompDetection:
		return e.Detection != nil
	case CompVisibility:
		return e.Visibility != nil
	}
	return false
}

// Attach создает пустой компонент нужного типа, если его еще нет.
func (e *Entity) Attach(kind ComponentKind) {
	if e.Has(kind) {
		return
	}
	switch kind {
	case CompStats:
		e.Stats = &StatsComponent{Level: 1, CritMultiplier: 1}
	case CompMovement:
		e.Movement = &MovementComponent{}
	case CompSkills:
		e.Skills = &SkillsComponent{}
	case CompBehavior:
		e.Behavior = &BehaviorComponent{}
	case CompStatusEffects:
		e.Status = &StatusEffectsComponent{Active: make(map[string]*ActiveStatus)}
	case CompTrap:
		e.Trap = &TrapComponent{Trigger: TriggerOnEnter}
	case CompInteractable:
		e.Interactable = &InteractableComponent{}
	case CompPortal:
		e.Portal = &PortalComponent{}
	case CompDetection:
		e.Detection = &DetectionComponent{}
	case CompVisibility:
		e.Visibility = &VisibilityComponent{}
	}
}

// IsAlive - есть статы и HP > 0
func (e *Entity) IsAlive() bool {
	return !e.removed && e.Stats != nil && e.Stats.HP > 0
}

// IsRemoved - сущность уничтожена и убрана с карты
func (e *Entity) IsRemoved() bool {
	return e.removed
}

// IsHidden - скрыта и еще не обнаружена. Такую нельзя выбрать целью.
func (e *Entity) IsHidden() bool {
	if !e.Concealed {
		return false
	}
	return e.Detection == nil || !e.Detection.Detected
}

// IsAI - управляется правилами поведения
func (e *Entity) IsAI() bool {
	return e.Kind != KindPlayer && e.Behavior != nil && e.Stats != nil
}

// Init - жизненный цикл: вызывается один раз, когда сущность уже стоит на карте.
func (e *Entity) Init(w *GameWorld) {
	e.removed = false
	if e.Detection != nil && !e.Concealed {
		e.Detection.Detected = true
	}
	if e.Behavior != nil {
		e.Behavior.Intent = nil
	}
	if e.Visibility != nil {
		e.Visibility.LastOrigin = nil
	}
	if e.Status != nil && e.Status.Active == nil {
		e.Status.Active = make(map[string]*ActiveStatus)
	}
	if e.Stats != nil {
		e.Stats.Clamp()
	}
}

// Destroy освобождает состояние. Игрок при переходе между картами не
// уничтожается, поэтому сюда попадают только сущности текущей карты.
func (e *Entity) Destroy() {
	e.removed = true
	if e.Behavior != nil {
		e.Behavior.Intent = nil
	}
	if e.Status != nil {
		e.Status.Active = make(map[string]*ActiveStatus)
	}
}

// EffectiveAttackRange - дальность атаки, по умолчанию 1
func (e *Entity) EffectiveAttackRange() int {
	if e.AttackRange <= 0 {
		return 1
	}
	return e.AttackRange
}

// FindSkill возвращает слот умения или nil
func (e *Entity) FindSkill(id string) *SkillSlot {
	if e.Skills == nil {
		return nil
	}
	for i := range e.Skills.Slots {
		if e.Skills.Slots[i].ID == id {
			return &e.Skills.Slots[i]
		}
	}
	return nil
}
