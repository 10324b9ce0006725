package engine

import (
	"errors"
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

func TestNewInstance_StartsPlayerTurn(t *testing.T) {
	rules := arena(4, domain.MapEntities{Enemies: []domain.SpawnEntry{at("goblin", 3, 0)}})
	inst, err := NewInstance(rules, Config{Seed: testSeed})
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	if inst.Turns.Phase != PhasePlayerTurn || inst.Turns.Turn != 1 {
		t.Fatalf("phase %s turn %d, want playerTurn 1", inst.Turns.Phase, inst.Turns.Turn)
	}
	if inst.World.Player() != inst.Player {
		t.Error("player is not registered on the map")
	}

	goblin := byBlueprint(t, inst, "goblin")
	if goblin.Behavior.Intent == nil {
		t.Fatal("initial intent must be declared at map load")
	}

	evs := inst.Drain()
	if indexOf(evs, domain.EventIntentDeclared, 0) < 0 {
		t.Error("IntentDeclared event missing after load")
	}
	if phaseIndex(evs, PhasePlayerTurn) < 0 {
		t.Error("PhaseChanged(playerTurn) missing after load")
	}
}

func TestNewInstance_UnknownMap(t *testing.T) {
	rules := arena(3, domain.MapEntities{})
	_, err := NewInstance(rules, Config{Seed: testSeed, MapID: "nowhere"})

	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestSubmit_MoveBudget(t *testing.T) {
	inst := startInstance(t, arena(4, domain.MapEntities{}), domain.ActorState{})
	inst.Player.Stats.AP = 2

	// 3 шага при 2 AP - отказ без изменений
	out := submit(t, inst, domain.MoveTo(hexgrid.Hex{Q: 3, R: 0}))
	if out.Rejected == nil {
		t.Fatal("3-step move with 2 AP must be rejected")
	}
	if inst.Player.Pos != (hexgrid.Hex{}) || inst.Player.Stats.AP != 2 {
		t.Errorf("state changed by rejection: pos %s ap %d", inst.Player.Pos, inst.Player.Stats.AP)
	}
	if len(out.Events) != 1 || out.Events[0].Level != domain.LogWarning {
		t.Errorf("rejection must produce exactly one warning log entry, got %+v", out.Events)
	}
	if len(inst.Replay.Actions) != 0 {
		t.Error("rejected action must not be recorded")
	}

	// 2 шага тратят весь AP и закрывают ход
	out = mustAccept(t, inst, domain.MoveTo(hexgrid.Hex{Q: 2, R: 0}))
	if inst.Player.Pos != (hexgrid.Hex{Q: 2, R: 0}) {
		t.Errorf("player at %s, want (2,0)", inst.Player.Pos)
	}
	if out.Turn != 2 || out.Phase != PhasePlayerTurn {
		t.Errorf("turn %d phase %s, want 2 playerTurn", out.Turn, out.Phase)
	}
	if inst.Player.Stats.AP != inst.Player.Stats.MaxAP {
		t.Errorf("AP %d, want restored to %d", inst.Player.Stats.AP, inst.Player.Stats.MaxAP)
	}
	if len(inst.Replay.Actions) != 1 || inst.Replay.Actions[0].Type != "move" {
		t.Errorf("unexpected replay log: %+v", inst.Replay.Actions)
	}
}

func TestSubmit_KillAwardsXP(t *testing.T) {
	rules := arena(4, domain.MapEntities{Enemies: []domain.SpawnEntry{at("goblin", 1, 0)}})
	inst := startInstance(t, rules, domain.ActorState{Archetype: "warrior"})
	goblin := byBlueprint(t, inst, "goblin")

	out := mustAccept(t, inst, domain.AttackTarget(goblin.ID))

	if inst.World.GetEntity(goblin.ID) != nil {
		t.Error("goblin must be removed after death")
	}
	if inst.Player.Stats.XP != 10 {
		t.Errorf("XP = %d, want 10", inst.Player.Stats.XP)
	}
	if inst.Player.Stats.AP != inst.Player.Stats.MaxAP-rules.Costs.AttackAP {
		t.Errorf("AP = %d, attack cost not spent", inst.Player.Stats.AP)
	}
	if indexOf(out.Events, domain.EventEntityRemoved, 0) < 0 {
		t.Error("EntityRemoved event missing")
	}
}

func TestSubmit_EnemyPhaseOrder(t *testing.T) {
	rules := arena(4, domain.MapEntities{Enemies: []domain.SpawnEntry{at("goblin", 3, 0)}})
	inst := startInstance(t, rules, domain.ActorState{})
	goblin := byBlueprint(t, inst, "goblin")

	out := mustAccept(t, inst, domain.EndTurn())

	enemy := phaseIndex(out.Events, PhaseEnemyTurn)
	intent := indexOf(out.Events, domain.EventIntentDeclared, enemy+1)
	player := phaseIndex(out.Events, PhasePlayerTurn)
	if enemy < 0 || intent < 0 || player < 0 || !(enemy < intent && intent < player) {
		t.Fatalf("want enemyTurn < intentDeclared < playerTurn, got %d %d %d", enemy, intent, player)
	}

	// Подход без атаки: гоблин встал рядом, игрок цел
	if hexgrid.Distance(goblin.Pos, inst.Player.Pos) != 1 {
		t.Errorf("goblin at %s did not approach", goblin.Pos)
	}
	if inst.Player.Stats.HP != inst.Player.Stats.MaxHP {
		t.Errorf("player HP %d, approach must not attack", inst.Player.Stats.HP)
	}
	if goblin.Behavior.Intent == nil || goblin.Behavior.Intent.Kind != domain.IntentAttack {
		t.Fatalf("adjacent goblin must declare attack, got %v", goblin.Behavior.Intent)
	}

	// Следующая фаза врагов исполняет объявленную атаку
	mustAccept(t, inst, domain.EndTurn())
	if inst.Player.Stats.HP != inst.Player.Stats.MaxHP-3 {
		t.Errorf("player HP %d, want %d", inst.Player.Stats.HP, inst.Player.Stats.MaxHP-3)
	}
}

func TestSubmit_PlayerDeathEndsGame(t *testing.T) {
	rules := arena(4, domain.MapEntities{Enemies: []domain.SpawnEntry{at("goblin", 1, 0)}})
	inst := startInstance(t, rules, domain.ActorState{})
	inst.Player.Stats.HP = 1

	out := mustAccept(t, inst, domain.EndTurn())
	if out.Phase != PhaseGameOver || inst.Turns.Reason != "player died" {
		t.Fatalf("phase %s reason %q, want gameOver/player died", out.Phase, inst.Turns.Reason)
	}
	if indexOf(out.Events, domain.EventGameOver, 0) < 0 {
		t.Error("GameOver event missing")
	}

	_, err := inst.Submit(domain.EndTurn())
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("action after game over: expected IntegrityError, got %v", err)
	}
}

func TestSubmit_TrapFiresOnce(t *testing.T) {
	rules := arena(4, domain.MapEntities{
		Enemies: []domain.SpawnEntry{at("goblin", 3, 0)},
		Traps:   []domain.SpawnEntry{at("spike_trap", 1, 0)},
	})
	inst := startInstance(t, rules, domain.ActorState{})
	trap := byBlueprint(t, inst, "spike_trap")
	goblin := byBlueprint(t, inst, "goblin")

	mustAccept(t, inst, domain.MoveTo(hexgrid.Hex{Q: 1, R: 0}))
	if inst.Player.Stats.HP != inst.Player.Stats.MaxHP-5 {
		t.Fatalf("player HP %d, trap must deal 5", inst.Player.Stats.HP)
	}
	if inst.World.GetEntity(trap.ID) != nil {
		t.Fatal("single-use trap must be removed")
	}

	// Гоблин проходит по той же клетке - ловушки уже нет
	mustAccept(t, inst, domain.MoveTo(hexgrid.Hex{}))
	mustAccept(t, inst, domain.EndTurn())
	if goblin.Pos != (hexgrid.Hex{Q: 1, R: 0}) {
		t.Fatalf("goblin at %s, expected to approach through (1,0)", goblin.Pos)
	}
	if goblin.Stats.HP != goblin.Stats.MaxHP {
		t.Errorf("goblin HP %d, trap fired twice", goblin.Stats.HP)
	}
}

func TestSubmit_PortalTransition(t *testing.T) {
	tests := []struct {
		name      string
		nextMap   *string
		wantMap   string
		wantPhase Phase
		wantPos   hexgrid.Hex
	}{
		{name: "next map", nextMap: strp("crypt_2"), wantMap: "crypt_2", wantPhase: PhasePlayerTurn, wantPos: hexgrid.Hex{}},
		{name: "final portal", nextMap: nil, wantMap: "arena", wantPhase: PhaseGameOver, wantPos: hexgrid.Hex{Q: 1, R: 0}},
		{name: "unknown map", nextMap: strp("nowhere"), wantMap: "arena", wantPhase: PhasePlayerTurn, wantPos: hexgrid.Hex{Q: 1, R: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portal := at("portal", 1, 0)
			portal.NextMapID = tt.nextMap
			inst := startInstance(t, arena(3, domain.MapEntities{Portals: []domain.SpawnEntry{portal}}), domain.ActorState{})
			player := inst.Player

			out := mustAccept(t, inst, domain.MoveTo(hexgrid.Hex{Q: 1, R: 0}))

			if inst.World.MapID != tt.wantMap {
				t.Errorf("map %s, want %s", inst.World.MapID, tt.wantMap)
			}
			if out.Phase != tt.wantPhase {
				t.Errorf("phase %s, want %s", out.Phase, tt.wantPhase)
			}
			if inst.Player != player || inst.World.GetEntity(player.ID) != player {
				t.Error("player instance must survive the transition")
			}
			if player.Pos != tt.wantPos {
				t.Errorf("player at %s, want %s", player.Pos, tt.wantPos)
			}
			if tt.wantMap == "crypt_2" {
				if indexOf(out.Events, domain.EventMapTransition, 0) < 0 {
					t.Error("MapTransition event missing")
				}
				if out.Turn != 2 || player.Stats.AP != player.Stats.MaxAP {
					t.Errorf("new map must open a fresh player turn: turn %d ap %d", out.Turn, player.Stats.AP)
				}
			}
		})
	}
}

func TestSubmit_Fireball(t *testing.T) {
	rules := arena(4, domain.MapEntities{Enemies: []domain.SpawnEntry{at("goblin", 3, 0), at("goblin", 4, 0)}})
	inst := startInstance(t, rules, domain.ActorState{Archetype: "mage"})
	p := inst.Player

	mustAccept(t, inst, domain.UseSkillAt("fireball", hexgrid.Hex{Q: 3, R: 0}))

	for _, e := range inst.World.Entities() {
		if e.Kind == domain.KindEnemy && e.Stats.HP != e.Stats.MaxHP-6 {
			t.Errorf("%s HP %d, want %d", e.ID, e.Stats.HP, e.Stats.MaxHP-6)
		}
	}
	if p.Stats.HP != p.Stats.MaxHP {
		t.Error("caster must not be hit by own area effect")
	}
	if p.Stats.AP != p.Stats.MaxAP-3 || p.Stats.MP != p.Stats.MaxMP-4 {
		t.Errorf("AP %d MP %d, costs not spent", p.Stats.AP, p.Stats.MP)
	}
	if slot := p.FindSkill("fireball"); slot.CooldownRemaining != 2 {
		t.Errorf("cooldown %d, want 2", slot.CooldownRemaining)
	}

	out := submit(t, inst, domain.UseSkillAt("fireball", hexgrid.Hex{Q: 3, R: 0}))
	if out.Rejected == nil {
		t.Fatal("skill on cooldown must be rejected")
	}
	if p.Stats.MP != p.Stats.MaxMP-4 {
		t.Errorf("MP %d, rejected skill must not spend", p.Stats.MP)
	}
}

func TestSubmit_Blink(t *testing.T) {
	wall := hexgrid.Hex{Q: 0, R: 2}
	inst := startInstance(t, arena(4, domain.MapEntities{}, wall), domain.ActorState{Archetype: "mage"})
	p := inst.Player

	if out := submit(t, inst, domain.UseSkillAt("blink", wall)); out.Rejected == nil {
		t.Fatal("blink into a wall must be rejected")
	}
	if p.Stats.MP != p.Stats.MaxMP {
		t.Error("rejected blink must not spend MP")
	}

	mustAccept(t, inst, domain.UseSkillAt("blink", hexgrid.Hex{Q: 2, R: 0}))
	if p.Pos != (hexgrid.Hex{Q: 2, R: 0}) {
		t.Errorf("player at %s, want (2,0)", p.Pos)
	}
	if p.Stats.MP != p.Stats.MaxMP-2 || p.Stats.AP != p.Stats.MaxAP-2 {
		t.Errorf("AP %d MP %d after blink", p.Stats.AP, p.Stats.MP)
	}
}

func TestSubmit_InteractCampfire(t *testing.T) {
	rules := arena(3, domain.MapEntities{Campfires: []domain.SpawnEntry{at("campfire", 1, 0)}})
	inst := startInstance(t, rules, domain.ActorState{})
	fire := byBlueprint(t, inst, "campfire")
	inst.Player.Stats.HP = 10

	mustAccept(t, inst, domain.InteractWith(fire.ID))
	if inst.Player.Stats.HP != 20 {
		t.Errorf("HP %d, campfire heals 10", inst.Player.Stats.HP)
	}
	if inst.World.GetEntity(fire.ID) != nil {
		t.Error("exhausted campfire must be removed")
	}
}
