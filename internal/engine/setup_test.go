package engine

import (
	"os"
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/dungeon"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	// Exit with the result of the tests
	os.Exit(m.Run())
}

const testSeed = "engine-test-seed"

// arena - встроенный бандл плюс открытая шестиугольная карта "arena" со стартом в (0,0).
// Все записи фиксированные, поэтому раскладка не зависит от сида.
func arena(radius int, ents domain.MapEntities, obstacles ...hexgrid.Hex) *domain.Rules {
	rules := dungeon.DefaultRules()
	tmpl := domain.MapTemplate{
		ID:        "arena",
		Name:      "Арена",
		Shape:     hexgrid.Shape{Kind: hexgrid.ShapeHexagon, Radius: radius},
		Obstacles: obstacles,
		Entities:  ents,
	}
	rules.Maps[tmpl.ID] = tmpl
	rules.StartMap = tmpl.ID
	return rules
}

func at(bp string, q, r int) domain.SpawnEntry {
	return domain.SpawnEntry{Type: bp, Q: q, R: r}
}

func strp(s string) *string { return &s }

// startInstance - симуляция с уже забранными событиями загрузки
func startInstance(t *testing.T, rules *domain.Rules, actor domain.ActorState) *Instance {
	t.Helper()
	inst, err := NewInstance(rules, Config{Seed: testSeed, Actor: actor})
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	inst.Drain()
	return inst
}

// byBlueprint - первая сущность карты с данным блюпринтом
func byBlueprint(t *testing.T, inst *Instance, bp string) *domain.Entity {
	t.Helper()
	for _, e := range inst.World.Entities() {
		if e.Blueprint == bp {
			return e
		}
	}
	t.Fatalf("no entity with blueprint %s", bp)
	return nil
}

func submit(t *testing.T, inst *Instance, a domain.Action) *Outcome {
	t.Helper()
	out, err := inst.Submit(a)
	if err != nil {
		t.Fatalf("Submit(%s): %v", a, err)
	}
	return out
}

func mustAccept(t *testing.T, inst *Instance, a domain.Action) *Outcome {
	t.Helper()
	out := submit(t, inst, a)
	if out.Rejected != nil {
		t.Fatalf("Submit(%s) rejected: %s", a, out.Rejected.Reason)
	}
	return out
}

func indexOf(evs []domain.Event, typ domain.EventType, from int) int {
	for i := from; i < len(evs); i++ {
		if evs[i].Type == typ {
			return i
		}
	}
	return -1
}

func phaseIndex(evs []domain.Event, phase Phase) int {
	for i, ev := range evs {
		if ev.Type == domain.EventPhaseChanged && ev.Phase == phase.String() {
			return i
		}
	}
	return -1
}
