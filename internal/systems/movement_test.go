package systems

import (
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

func TestPlanMove_InsufficientAP(t *testing.T) {
	w := createTestWorld(4)
	rules := testRules()
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 5)
	hero.Stats.AP = 2

	_, rej := PlanMove(w, hero, hexgrid.Hex{Q: 3, R: 0}, rules.Costs)
	if rej == nil {
		t.Fatal("3-step move with 2 AP must be rejected")
	}
	if hero.Stats.AP != 2 || hero.Pos != (hexgrid.Hex{}) {
		t.Error("rejected move changed state")
	}

	plan, rej := PlanMove(w, hero, hexgrid.Hex{Q: 2, R: 0}, rules.Costs)
	if rej != nil {
		t.Fatalf("2-step move should be valid: %v", rej)
	}
	if plan.Cost != 2 {
		t.Errorf("cost = %d, want 2", plan.Cost)
	}
}

func TestPlanMove_MovementRangeCap(t *testing.T) {
	w := createTestWorld(4)
	rules := testRules()
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 5)
	hero.Attach(domain.CompMovement)
	hero.Movement.Range = 1

	if _, rej := PlanMove(w, hero, hexgrid.Hex{Q: 2, R: 0}, rules.Costs); rej == nil {
		t.Error("movement range 1 must cap a 2-step move")
	}
}

func TestApplyMove(t *testing.T) {
	w := createTestWorld(3)
	rules := testRules()
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 5)

	plan, rej := PlanMove(w, hero, hexgrid.Hex{Q: 0, R: 2}, rules.Costs)
	if rej != nil {
		t.Fatal(rej)
	}

	var events domain.EventBuffer
	if err := ApplyMove(w, hero, plan, &events); err != nil {
		t.Fatal(err)
	}
	if hero.Pos != (hexgrid.Hex{Q: 0, R: 2}) {
		t.Errorf("hero at %v", hero.Pos)
	}
	if hero.Stats.AP != 2 {
		t.Errorf("AP = %d, want 2", hero.Stats.AP)
	}

	sawPos := false
	for _, ev := range events.Peek() {
		if ev.Type == domain.EventPositionChanged && ev.EntityID == hero.ID {
			sawPos = true
		}
	}
	if !sawPos {
		t.Error("PositionChanged not emitted")
	}
}

func TestTeleport_Blocked(t *testing.T) {
	w := createTestWorld(2, hexgrid.Hex{Q: 1, R: 0})
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 5)
	spawn(t, w, domain.KindEnemy, hexgrid.Hex{Q: 0, R: 1}, 10, 1)

	var events domain.EventBuffer
	for _, dest := range []hexgrid.Hex{{Q: 1, R: 0}, {Q: 0, R: 1}, {Q: 7, R: 7}} {
		if rej := Teleport(w, hero, dest, &events); rej == nil {
			t.Errorf("teleport to %v should fail", dest)
		}
	}
	if rej := Teleport(w, hero, hexgrid.Hex{Q: -2, R: 2}, &events); rej != nil {
		t.Errorf("teleport failed: %v", rej)
	}
}
