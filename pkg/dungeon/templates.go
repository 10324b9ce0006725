package dungeon

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

// Встроенный бандл контента. Используется, если HEXT_CONTENT_DIR не задан,
// и в тестах. DefaultRules каждый раз возвращает новый экземпляр.

// --- ИГРОК ---

var Player = domain.Blueprint{
	ID:             "player",
	Kind:           domain.KindPlayer,
	Name:           "Герой",
	Components:     []string{"stats", "movement", "skills", "statusEffects", "visibility"},
	BlocksMovement: true,
	ZIndex:         10,
	Stats: &domain.StatsComponent{
		MaxHP: 30, MaxMP: 10, MaxAP: 6,
		Attack: 6, Defense: 2, MagicAttack: 4, MagicDefense: 2,
		Accuracy: 4, Evasion: 2, CritChance: 0.05, CritMultiplier: 1.5,
		Level: 1,
	},
	FullRange:    3,
	PartialRange: 5,
}

// --- ВРАГИ ---

var Goblin = domain.Blueprint{
	ID:             "goblin",
	Kind:           domain.KindEnemy,
	Name:           "Хитрый Гоблин",
	Components:     []string{"stats", "movement", "behavior", "statusEffects"},
	BlocksMovement: true,
	ZIndex:         10,
	Stats:          &domain.StatsComponent{MaxHP: 8, MaxAP: 4, Attack: 3, Defense: 1, Accuracy: 2, XP: 10, Level: 1, CritMultiplier: 1},
	RuleSet:        "aggressive",
}

var Orc = domain.Blueprint{
	ID:             "orc",
	Kind:           domain.KindEnemy,
	Name:           "Свирепый Орк",
	Components:     []string{"stats", "movement", "skills", "behavior", "statusEffects"},
	BlocksMovement: true,
	ZIndex:         10,
	Stats:          &domain.StatsComponent{MaxHP: 18, MaxAP: 4, Attack: 5, Defense: 3, Accuracy: 1, XP: 25, Level: 2, CritMultiplier: 1},
	MovementRange:  2,
	Skills:         []string{"war_cry"},
	RuleSet:        "brute",
}

var SkeletonArcher = domain.Blueprint{
	ID:             "skeleton_archer",
	Kind:           domain.KindEnemy,
	Name:           "Скелет-лучник",
	Components:     []string{"stats", "movement", "behavior", "statusEffects"},
	BlocksMovement: true,
	ZIndex:         10,
	Stats:          &domain.StatsComponent{MaxHP: 10, MaxAP: 4, Attack: 4, Accuracy: 3, XP: 15, Level: 1, CritMultiplier: 1},
	AttackRange:    3,
	RuleSet:        "archer",
}

var Shaman = domain.Blueprint{
	ID:             "goblin_shaman",
	Kind:           domain.KindEnemy,
	Name:           "Гоблин-шаман",
	Components:     []string{"stats", "movement", "skills", "behavior", "statusEffects"},
	BlocksMovement: true,
	ZIndex:         10,
	Stats:          &domain.StatsComponent{MaxHP: 9, MaxMP: 9, MP: 9, MaxAP: 4, Attack: 2, MagicAttack: 4, XP: 20, Level: 1, CritMultiplier: 1},
	Skills:         []string{"poison_dart"},
	RuleSet:        "caster",
}

// --- ЛОВУШКИ, ОБЪЕКТЫ, ВЫХОДЫ ---

var SpikeTrap = domain.Blueprint{
	ID:          "spike_trap",
	Kind:        domain.KindTrap,
	Name:        "Шипы",
	Components:  []string{"trap", "detection"},
	Concealed:   true,
	ZIndex:      1,
	TrapEffects: []domain.EffectDef{{Type: domain.EffectDamage, Amount: 5}},
	Difficulty:  3,
}

var PoisonVent = domain.Blueprint{
	ID:          "poison_vent",
	Kind:        domain.KindTrap,
	Name:        "Ядовитый клапан",
	Components:  []string{"trap", "detection"},
	Concealed:   true,
	ZIndex:      1,
	TrapEffects: []domain.EffectDef{{Type: domain.EffectDamage, Amount: 1}, {Type: domain.EffectApplyStatus, Status: "poison"}},
	Reusable:    true,
	Difficulty:  5,
}

var Campfire = domain.Blueprint{
	ID:         "campfire",
	Kind:       domain.KindInteractable,
	Name:       "Костер",
	Components: []string{"interactable"},
	ZIndex:     2,
	Interact:   &domain.InteractEffect{Type: "heal", Amount: 10},
	Uses:       1,
}

var ManaShrine = domain.Blueprint{
	ID:             "mana_shrine",
	Kind:           domain.KindInteractable,
	Name:           "Алтарь маны",
	Components:     []string{"interactable"},
	BlocksMovement: true,
	ZIndex:         2,
	Interact:       &domain.InteractEffect{Type: "restore_mp", Amount: 5},
}

var Portal = domain.Blueprint{
	ID:         "portal",
	Kind:       domain.KindPortal,
	Name:       "Портал",
	Components: []string{"portal"},
	ZIndex:     3,
}

// --- УМЕНИЯ И СТАТУСЫ ---

var Skills = []domain.SkillDef{
	{ID: "fireball", Name: "Огненный шар", APCost: 3, MPCost: 4, Cooldown: 2, Range: 4, RequiresLOS: true, Effects: []domain.EffectDef{
		{Type: domain.EffectDamage, Mode: domain.TargetArea, Amount: 6, Radius: 1},
	}},
	{ID: "blink", Name: "Скачок", APCost: 2, MPCost: 2, Cooldown: 3, Range: 3, RequiresLOS: true, Effects: []domain.EffectDef{
		{Type: domain.EffectMovement},
	}},
	{ID: "power_strike", Name: "Мощный удар", APCost: 3, Cooldown: 1, Range: 1, Effects: []domain.EffectDef{
		{Type: domain.EffectDamage, Mode: domain.TargetSingle, Amount: 6, Multiplier: 1.5},
	}},
	{ID: "war_cry", Name: "Боевой клич", APCost: 1, Cooldown: 3, Effects: []domain.EffectDef{
		{Type: domain.EffectApplyStatus, Mode: domain.TargetSelf, Status: "rage"},
	}},
	{ID: "poison_dart", Name: "Отравленный дротик", APCost: 2, MPCost: 3, Cooldown: 2, Range: 3, RequiresLOS: true, Effects: []domain.EffectDef{
		{Type: domain.EffectDamage, Mode: domain.TargetSingle, Amount: 2},
		{Type: domain.EffectApplyStatus, Mode: domain.TargetSingle, Status: "poison", Duration: 3},
	}},
}

var Statuses = []domain.StatusDef{
	{ID: "poison", Name: "Яд", Duration: 2, Tick: domain.StatusTickEffect{Damage: 2}},
	{ID: "rage", Name: "Ярость", Duration: 2, Modifiers: []domain.StatModifier{{Stat: "attack", Delta: 3}}},
	{ID: "regeneration", Name: "Регенерация", Duration: 3, Tick: domain.StatusTickEffect{Heal: 2}},
}

var RuleSets = []domain.RuleSet{
	{ID: "aggressive", Rules: []domain.RuleDef{{Action: domain.RuleAttack}, {Action: domain.RuleApproach}, {Action: domain.RulePass}}},
	{ID: "brute", Rules: []domain.RuleDef{
		{Action: domain.RuleSkill, Skill: "war_cry", MaxDistance: 3},
		{Action: domain.RuleAttack},
		{Action: domain.RuleApproach},
		{Action: domain.RulePass},
	}},
	{ID: "archer", Rules: []domain.RuleDef{{Action: domain.RuleAttack}, {Action: domain.RuleApproach, MaxDistance: 6}, {Action: domain.RulePass}}},
	{ID: "caster", Rules: []domain.RuleDef{
		{Action: domain.RuleSkill, Skill: "poison_dart"},
		{Action: domain.RuleAttack},
		{Action: domain.RuleApproach, MaxDistance: 5},
		{Action: domain.RulePass},
	}},
}

var Archetypes = []domain.Archetype{
	{ID: "warrior", Name: "Воин", Stats: domain.StatsComponent{MaxHP: 40, MaxAP: 6, MaxMP: 4, Attack: 8, Defense: 4, Accuracy: 3}, Skills: []string{"power_strike"}},
	{ID: "mage", Name: "Маг", Stats: domain.StatsComponent{MaxHP: 24, MaxAP: 6, MaxMP: 16, Attack: 4, MagicAttack: 8, Accuracy: 5}, Skills: []string{"fireball", "blink"}},
	{ID: "rogue", Name: "Плут", Stats: domain.StatsComponent{MaxHP: 28, MaxAP: 7, MaxMP: 6, Attack: 6, Accuracy: 7, Evasion: 5}, Skills: []string{"blink"}, AttackRange: 2},
}

// --- КАРТЫ ---

func intp(v int) *int { return &v }

var CryptEntrance = domain.MapTemplate{
	ID:          "crypt_1",
	Name:        "Вход в склеп",
	Shape:       hexgrid.Shape{Kind: hexgrid.ShapeHexagon, Radius: 6},
	Obstacles:   []hexgrid.Hex{{Q: 0, R: -2}, {Q: 1, R: -2}, {Q: -1, R: 3}, {Q: 0, R: 3}, {Q: 3, R: 0}, {Q: 3, R: 1}},
	PlayerStart: hexgrid.Hex{Q: -5, R: 2},
	Entities: domain.MapEntities{
		Enemies: []domain.SpawnEntry{
			{Type: "goblin", Q: 1, R: 0},
			{Type: "goblin", Random: true},
			{Type: "skeleton_archer", Q: 4, R: -3},
		},
		Traps: []domain.SpawnEntry{
			{Type: "spike_trap", Q: -2, R: 1},
			{Type: "poison_vent", Random: true},
		},
		Campfires: []domain.SpawnEntry{
			{Type: "campfire", Q: -4, R: 4},
		},
		Portals: []domain.SpawnEntry{
			{Type: "portal", Q: 5, R: 0, SpawnOverrides: domain.SpawnOverrides{NextMapID: strp("crypt_2")}},
		},
	},
}

var CryptDepths = domain.MapTemplate{
	ID:          "crypt_2",
	Name:        "Глубины склепа",
	Shape:       hexgrid.Shape{Kind: hexgrid.ShapeRectangle, Width: 10, Height: 7},
	Obstacles:   []hexgrid.Hex{{Q: 3, R: 2}, {Q: 3, R: 3}, {Q: 2, R: 4}, {Q: 5, R: 1}},
	PlayerStart: hexgrid.Hex{Q: 0, R: 0},
	Entities: domain.MapEntities{
		Enemies: []domain.SpawnEntry{
			{Type: "orc", Q: 6, R: 3},
			{Type: "goblin_shaman", Q: 5, R: 5},
			{Type: "goblin", Random: true, SpawnOverrides: domain.SpawnOverrides{HP: intp(12), Name: strp("Гоблин-ветеран")}},
		},
		Traps: []domain.SpawnEntry{
			{Type: "spike_trap", Q: 2, R: 2, SpawnOverrides: domain.SpawnOverrides{Amount: intp(8)}},
		},
		Campfires: []domain.SpawnEntry{
			{Type: "mana_shrine", Q: 0, R: 5},
		},
		Portals: []domain.SpawnEntry{
			{Type: "portal", Q: 6, R: 6},
		},
	},
}

func strp(s string) *string { return &s }

// DefaultRules собирает встроенный бандл
func DefaultRules() *domain.Rules {
	r := &domain.Rules{
		Costs:       domain.Costs{MoveAP: 1, AttackAP: 2, InteractAP: 1},
		Progression: domain.Progression{XPPerLevel: 50, DefaultXP: 10, HPPerLevel: 5, AttackPerLevel: 1},
		StartMap:    CryptEntrance.ID,
		Blueprints:  make(map[string]domain.Blueprint),
		Archetypes:  make(map[string]domain.Archetype),
		Skills:      make(map[string]domain.SkillDef),
		Statuses:    make(map[string]domain.StatusDef),
		RuleSets:    make(map[string]domain.RuleSet),
		Maps:        make(map[string]domain.MapTemplate),
	}
	for _, bp := range []domain.Blueprint{Player, Goblin, Orc, SkeletonArcher, Shaman, SpikeTrap, PoisonVent, Campfire, ManaShrine, Portal} {
		r.Blueprints[bp.ID] = bp
	}
	for _, a := range Archetypes {
		r.Archetypes[a.ID] = a
	}
	for _, s := range Skills {
		r.Skills[s.ID] = s
	}
	for _, s := range Statuses {
		r.Statuses[s.ID] = s
	}
	for _, rs := range RuleSets {
		r.RuleSets[rs.ID] = rs
	}
	for _, m := range []domain.MapTemplate{CryptEntrance, CryptDepths} {
		r.Maps[m.ID] = m
	}
	return r
}
