package domain

import (
	"bytes"
	"testing"
)

func newStatsEntity() *Entity {
	e := &Entity{ID: "e1"}
	e.Attach(CompStats)
	e.Stats.MaxHP, e.Stats.HP = 20, 20
	e.Stats.MaxAP, e.Stats.AP = 4, 4
	e.Stats.MaxMP, e.Stats.MP = 10, 5
	return e
}

func TestModifyHP_Clamps(t *testing.T) {
	tests := []struct {
		name    string
		delta   int
		wantHP  int
		applied int
	}{
		{"overkill", -50, 0, -20},
		{"overheal", 5, 20, 0},
		{"normal hit", -7, 13, -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newStatsEntity()
			var buf EventBuffer
			got := e.ModifyHP(tt.delta, &buf)
			if got != tt.applied || e.Stats.HP != tt.wantHP {
				t.Errorf("applied=%d hp=%d, want applied=%d hp=%d", got, e.Stats.HP, tt.applied, tt.wantHP)
			}
			// Событие только при реальном изменении
			if (tt.applied != 0) != (buf.Len() == 1) {
				t.Errorf("unexpected event count %d", buf.Len())
			}
		})
	}
}

func TestSpendAP_Insufficient(t *testing.T) {
	e := newStatsEntity()
	var buf EventBuffer

	if e.SpendAP(5, &buf) {
		t.Fatal("spent more AP than available")
	}
	if e.Stats.AP != 4 || buf.Len() != 0 {
		t.Error("failed spend must not mutate or emit")
	}
	if !e.SpendAP(3, &buf) || e.Stats.AP != 1 {
		t.Errorf("AP after spend = %d, want 1", e.Stats.AP)
	}

	e.RestoreAP(&buf)
	if e.Stats.AP != 4 {
		t.Errorf("RestoreAP -> %d", e.Stats.AP)
	}
}

func TestStats_CanonicalStable(t *testing.T) {
	a := newStatsEntity().Stats
	b := newStatsEntity().Stats

	if !bytes.Equal(a.Canonical(), b.Canonical()) {
		t.Fatal("equal stats produced different bytes")
	}
	b.XP = 1
	if bytes.Equal(a.Canonical(), b.Canonical()) {
		t.Fatal("different stats produced equal bytes")
	}
	if !bytes.HasPrefix(a.Canonical(), []byte(`{"hp":20,"maxHp":20,`)) {
		t.Errorf("unexpected field order: %s", a.Canonical())
	}
}

func TestEntity_IsHidden(t *testing.T) {
	e := &Entity{ID: "t1", Concealed: true}
	e.Attach(CompDetection)
	if !e.IsHidden() {
		t.Error("concealed entity should be hidden")
	}
	e.Detection.Detected = true
	if e.IsHidden() {
		t.Error("detected entity should not be hidden")
	}

	open := &Entity{ID: "t2"}
	open.Attach(CompDetection)
	open.Init(nil)
	if open.IsHidden() || !open.Detection.Detected {
		t.Error("non-concealed entity starts detected")
	}
}
