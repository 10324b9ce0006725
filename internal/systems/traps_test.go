package systems

import (
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

func spawnTrap(t *testing.T, w *domain.GameWorld, pos hexgrid.Hex, reusable bool) *domain.Entity {
	t.Helper()
	trap := &domain.Entity{ID: domain.EntityID("t_" + pos.String()), Kind: domain.KindTrap, Name: "Шипы", Pos: pos, Concealed: true}
	trap.Attach(domain.CompTrap)
	trap.Attach(domain.CompDetection)
	trap.Trap.Reusable = reusable
	trap.Trap.Effects = []domain.EffectDef{{Type: domain.EffectDamage, Amount: 4}}
	if err := w.RegisterEntity(trap); err != nil {
		t.Fatal(err)
	}
	return trap
}

func TestActivateTrap_NonReusableOnce(t *testing.T) {
	w := createTestWorld(2)
	rules := testRules()
	trap := spawnTrap(t, w, hexgrid.Hex{Q: 1, R: 0}, false)
	first := spawn(t, w, domain.KindEnemy, hexgrid.Hex{}, 20, 1)
	second := spawn(t, w, domain.KindPlayer, hexgrid.Hex{Q: -1, R: 0}, 20, 1)

	var events domain.EventBuffer
	if rej := ActivateTrap(w, rules, trap, first, &events); rej != nil {
		t.Fatalf("first trigger failed: %v", rej)
	}
	if first.Stats.HP != 16 {
		t.Errorf("first victim HP = %d, want 16", first.Stats.HP)
	}
	if w.GetEntity(trap.ID) != nil {
		t.Fatal("non-reusable trap must be removed after first trigger")
	}

	// Второй заход: ловушки уже нет на клетке
	if len(w.GetEntitiesAt(1, 0)) != 0 {
		t.Error("trap still indexed")
	}
	if rej := ActivateTrap(w, rules, trap, second, &events); rej == nil {
		t.Error("second trigger must be rejected")
	}
	if second.Stats.HP != 20 {
		t.Error("second victim must not be damaged")
	}
}

func TestActivateTrap_Reusable(t *testing.T) {
	w := createTestWorld(2)
	rules := testRules()
	trap := spawnTrap(t, w, hexgrid.Hex{Q: 1, R: 0}, true)
	victim := spawn(t, w, domain.KindEnemy, hexgrid.Hex{}, 20, 1)

	var events domain.EventBuffer
	_ = ActivateTrap(w, rules, trap, victim, &events)
	_ = ActivateTrap(w, rules, trap, victim, &events)

	if victim.Stats.HP != 12 {
		t.Errorf("HP = %d, want 12", victim.Stats.HP)
	}
	if w.GetEntity(trap.ID) == nil {
		t.Error("reusable trap must stay")
	}
	if !trap.Detection.Detected {
		t.Error("triggered trap becomes detected")
	}
}

func TestRevealConcealed(t *testing.T) {
	w := createTestWorld(3)
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 1)
	hero.Stats.Accuracy = 3

	easy := spawnTrap(t, w, hexgrid.Hex{Q: 3, R: 0}, false)
	easy.Detection.Difficulty = 2
	hard := spawnTrap(t, w, hexgrid.Hex{Q: -3, R: 0}, false)
	hard.Detection.Difficulty = 9
	adjacent := spawnTrap(t, w, hexgrid.Hex{Q: 0, R: 1}, false)
	adjacent.Detection.Difficulty = 9

	var events domain.EventBuffer
	revealed := RevealConcealed(w, hero, &events)

	if len(revealed) != 2 {
		t.Fatalf("revealed %d entities, want 2", len(revealed))
	}
	if !easy.Detection.Detected || !adjacent.Detection.Detected {
		t.Error("easy and adjacent traps should be detected")
	}
	if hard.Detection.Detected {
		t.Error("hard distant trap must stay hidden")
	}
}

func TestApplyInteractable(t *testing.T) {
	w := createTestWorld(2)
	hero := spawn(t, w, domain.KindPlayer, hexgrid.Hex{}, 20, 1)
	hero.Stats.HP = 5

	fire := &domain.Entity{ID: "i_fire", Kind: domain.KindInteractable, Name: "Костер", Pos: hexgrid.Hex{Q: 1, R: 0}}
	fire.Attach(domain.CompInteractable)
	fire.Interactable.Effect = domain.InteractEffect{Type: "heal", Amount: 10}
	fire.Interactable.Uses = 1
	_ = w.RegisterEntity(fire)

	var events domain.EventBuffer
	if rej := ApplyInteractable(w, fire, hero, &events); rej != nil {
		t.Fatal(rej)
	}
	if hero.Stats.HP != 15 {
		t.Errorf("HP = %d, want 15", hero.Stats.HP)
	}
	if w.GetEntity(fire.ID) != nil {
		t.Error("single-use campfire must be removed")
	}
	if rej := ApplyInteractable(w, fire, hero, &events); rej == nil {
		t.Error("exhausted campfire must reject")
	}
}
