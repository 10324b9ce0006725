package dungeon

import (
	"errors"
	"os"
	"strings"
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"
	"hextactics-server/pkg/utils"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestDefaultRules_Valid(t *testing.T) {
	rules := DefaultRules()
	if err := rules.Validate(); err != nil {
		t.Fatalf("built-in bundle is invalid: %v", err)
	}
	if rules.Digest() != DefaultRules().Digest() {
		t.Error("digest of the built-in bundle must be stable")
	}
}

func TestFactory_Spawn(t *testing.T) {
	rules := DefaultRules()
	f := NewFactory(rules, utils.NewSeededRNG("spawn"))

	hp := 12
	name := "Гоблин-ветеран"
	goblin, err := f.Spawn("goblin", hexgrid.Hex{Q: 1, R: 1}, domain.SpawnOverrides{HP: &hp, Name: &name})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(string(goblin.ID), "e_") || len(goblin.ID) != 18 {
		t.Errorf("unexpected id %q", goblin.ID)
	}
	if goblin.Name != name {
		t.Errorf("name = %q", goblin.Name)
	}
	if goblin.Stats.MaxHP != 12 || goblin.Stats.HP != 12 {
		t.Errorf("hp override not applied: %+v", goblin.Stats)
	}
	if goblin.Stats.AP != goblin.Stats.MaxAP {
		t.Error("new entity must start with full AP")
	}
	if goblin.Behavior == nil || goblin.Behavior.RuleSet != "aggressive" {
		t.Error("goblin must have aggressive behavior")
	}
	if goblin.Trap != nil || goblin.Portal != nil {
		t.Error("components not in blueprint must stay nil")
	}

	// Шаблон не должен меняться вместе с сущностью
	goblin.Stats.Attack = 99
	if rules.Blueprints["goblin"].Stats.Attack == 99 {
		t.Error("spawn shares stats with blueprint")
	}
}

func TestFactory_SpawnDeterministic(t *testing.T) {
	ids := func(seed string) []domain.EntityID {
		f := NewFactory(DefaultRules(), utils.NewSeededRNG(seed))
		var out []domain.EntityID
		for _, bp := range []string{"goblin", "spike_trap", "campfire", "portal"} {
			e, err := f.Spawn(bp, hexgrid.Hex{}, domain.SpawnOverrides{})
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, e.ID)
		}
		return out
	}

	a, b := ids("same"), ids("same")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("id %d differs: %s vs %s", i, a[i], b[i])
		}
	}
	prefixes := []string{"e_", "t_", "i_", "g_"}
	for i, p := range prefixes {
		if !strings.HasPrefix(string(a[i]), p) {
			t.Errorf("id %s must start with %s", a[i], p)
		}
	}
}

func TestFactory_UnknownBlueprint(t *testing.T) {
	rng := utils.NewSeededRNG("x")
	f := NewFactory(DefaultRules(), rng)

	_, err := f.Spawn("dragon", hexgrid.Hex{}, domain.SpawnOverrides{})
	var cfg *domain.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if rng.Draws() != 0 {
		t.Error("failed spawn must not consume RNG")
	}
}

func TestFactory_SkipsUnknownSkill(t *testing.T) {
	f := NewFactory(DefaultRules(), utils.NewSeededRNG("x"))
	orc, err := f.Spawn("orc", hexgrid.Hex{}, domain.SpawnOverrides{Skills: []string{"war_cry", "meteor"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(orc.Skills.Slots) != 1 || orc.Skills.Slots[0].ID != "war_cry" {
		t.Errorf("slots = %+v", orc.Skills.Slots)
	}
}

func TestFactory_CreatePlayer(t *testing.T) {
	tests := []struct {
		name       string
		actor      domain.ActorState
		wantHP     int
		wantSkills []string
		wantDraws  uint64
	}{
		{"blueprint only", domain.ActorState{}, 30, nil, 2},
		{"mage archetype", domain.ActorState{Archetype: "mage"}, 24, []string{"fireball", "blink"}, 2},
		{"fixed id", domain.ActorState{ID: "p_hero", Archetype: "warrior"}, 40, []string{"power_strike"}, 0},
		{
			"saved stats",
			domain.ActorState{ID: "p_saved", Archetype: "warrior", Stats: &domain.StatsComponent{HP: 50, MaxHP: 45, MaxAP: 6, Level: 3}},
			45, []string{"power_strike"}, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := utils.NewSeededRNG("player")
			p, err := NewFactory(DefaultRules(), rng).CreatePlayer(tt.actor)
			if err != nil {
				t.Fatal(err)
			}
			if p.Kind != domain.KindPlayer {
				t.Errorf("kind = %v", p.Kind)
			}
			if p.Stats.HP != tt.wantHP {
				t.Errorf("HP = %d, want %d", p.Stats.HP, tt.wantHP)
			}
			if len(p.Skills.Slots) != len(tt.wantSkills) {
				t.Fatalf("skills = %+v, want %v", p.Skills.Slots, tt.wantSkills)
			}
			for i, id := range tt.wantSkills {
				if p.Skills.Slots[i].ID != id {
					t.Errorf("skill %d = %s, want %s", i, p.Skills.Slots[i].ID, id)
				}
			}
			if rng.Draws() != tt.wantDraws {
				t.Errorf("draws = %d, want %d", rng.Draws(), tt.wantDraws)
			}
			if tt.actor.ID != "" && p.ID != tt.actor.ID {
				t.Errorf("id = %s", p.ID)
			}
			if p.Visibility == nil || p.Visibility.FullRange == 0 {
				t.Error("player must keep visibility from blueprint")
			}
		})
	}

	if _, err := NewFactory(DefaultRules(), utils.NewSeededRNG("x")).CreatePlayer(domain.ActorState{Archetype: "bard"}); err == nil {
		t.Error("unknown archetype must fail")
	}
}
