package systems

import (
	"fmt"
	"os"
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	// Exit with the result of the tests
	os.Exit(m.Run())
}

// createTestWorld - шестиугольная карта радиуса radius, полностью видимая
func createTestWorld(radius int, obstacles ...hexgrid.Hex) *domain.GameWorld {
	w := domain.NewGameWorld("test", hexgrid.Range(hexgrid.Hex{}, radius), obstacles)
	for _, t := range w.Tiles {
		t.Visibility = domain.VisibilityFull
	}
	return w
}

// testRules - минимальный набор правил для систем
func testRules() *domain.Rules {
	return &domain.Rules{
		Costs:       domain.Costs{MoveAP: 1, AttackAP: 2, InteractAP: 1},
		Progression: domain.Progression{XPPerLevel: 100, DefaultXP: 10, HPPerLevel: 5, AttackPerLevel: 1},
		Skills: map[string]domain.SkillDef{
			"fireball": {ID: "fireball", APCost: 2, MPCost: 3, Cooldown: 2, Range: 4, Effects: []domain.EffectDef{
				{Type: domain.EffectDamage, Mode: domain.TargetArea, Amount: 6, Radius: 1},
			}},
		},
		Statuses: map[string]domain.StatusDef{
			"poison": {ID: "poison", Duration: 2, Tick: domain.StatusTickEffect{Damage: 3}},
			"rage":   {ID: "rage", Duration: 1, Modifiers: []domain.StatModifier{{Stat: "attack", Delta: 4}}},
		},
		RuleSets: map[string]domain.RuleSet{
			"aggressive": {ID: "aggressive", Rules: []domain.RuleDef{
				{Action: domain.RuleAttack}, {Action: domain.RuleApproach}, {Action: domain.RulePass},
			}},
		},
	}
}

var testSeq int

// spawn - сущность с базовыми статами, сразу на карте
func spawn(t *testing.T, w *domain.GameWorld, kind domain.EntityKind, pos hexgrid.Hex, hp, attack int) *domain.Entity {
	t.Helper()
	testSeq++
	e := &domain.Entity{
		ID:             domain.EntityID(fmt.Sprintf("%s%d", kind.IDPrefix(), testSeq)),
		Kind:           kind,
		Name:           kind.String(),
		Pos:            pos,
		BlocksMovement: kind == domain.KindPlayer || kind == domain.KindEnemy,
	}
	e.Attach(domain.CompStats)
	e.Stats.MaxHP, e.Stats.HP = hp, hp
	e.Stats.MaxAP, e.Stats.AP = 4, 4
	e.Stats.MaxMP, e.Stats.MP = 10, 10
	e.Stats.Attack = attack
	if err := w.RegisterEntity(e); err != nil {
		t.Fatalf("spawn %s: %v", e.ID, err)
	}
	return e
}
