package engine

import (
	"encoding/json"
	"testing"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

func TestResolver_Decode(t *testing.T) {
	r := NewResolver(duelRules())

	tests := []struct {
		name    string
		typ     string
		details string
		want    domain.Action
		wantErr bool
	}{
		{name: "move", typ: "move", details: `{"targetCoords":{"q":1,"r":-1}}`, want: domain.MoveTo(hexgrid.Hex{Q: 1, R: -1})},
		{name: "case insensitive", typ: "PlayerInput", details: `{"targetCoords":{"q":0,"r":2}}`, want: domain.PlayerInputAt(hexgrid.Hex{Q: 0, R: 2})},
		{name: "attack", typ: "attack", details: `{"targetId":"e_1"}`, want: domain.AttackTarget("e_1")},
		{name: "interact", typ: "interactWithEntity", details: `{"targetId":"i_1"}`, want: domain.InteractWith("i_1")},
		{name: "skill on entity", typ: "skill", details: `{"skillId":"war_cry"}`, want: domain.UseSkillOn("war_cry", "")},
		{name: "end turn", typ: "endTurn", details: ``, want: domain.EndTurn()},
		{name: "unknown", typ: "teleport", details: `{}`, wantErr: true},
		{name: "attack without target", typ: "attack", details: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := r.Decode(tt.typ, json.RawMessage(tt.details))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if a.String() != tt.want.String() {
				t.Errorf("got %s, want %s", a, tt.want)
			}
		})
	}
}

func TestResolver_RejectionRollsBackEvents(t *testing.T) {
	inst := startInstance(t, duelRules(), domain.ActorState{})
	var events domain.EventBuffer
	events.Log(domain.LogInfo, "", "до действия")

	res := inst.resolver.Resolve(inst.World, inst.Player, domain.MoveTo(hexgrid.Hex{Q: 0, R: 5}), &events)
	if res.Rejected == nil {
		t.Fatal("move off the map must be rejected")
	}

	evs := events.Peek()
	if len(evs) != 2 {
		t.Fatalf("want earlier entry + warning, got %d events", len(evs))
	}
	if evs[1].Level != domain.LogWarning || evs[1].Text != res.Rejected.Reason {
		t.Errorf("unexpected rejection entry %+v", evs[1])
	}
}

func TestResolver_DeadActor(t *testing.T) {
	inst := startInstance(t, duelRules(), domain.ActorState{})
	inst.Player.Stats.HP = 0

	var events domain.EventBuffer
	res := inst.resolver.Resolve(inst.World, inst.Player, domain.EndTurn(), &events)
	if res.Rejected == nil {
		t.Error("dead actor must not act")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	r := NewResolver(duelRules())
	actions := []domain.Action{
		domain.MoveTo(hexgrid.Hex{Q: 2, R: -1}),
		domain.AttackTarget("e_abc"),
		domain.UseSkillAt("fireball", hexgrid.Hex{Q: 3, R: 0}),
		domain.UseSkillOn("poison_dart", "e_abc"),
		domain.EndTurn(),
	}
	inst := startInstance(t, duelRules(), domain.ActorState{})

	for _, a := range actions {
		inst.record(a)
	}
	for i, entry := range inst.Replay.Actions {
		got, err := r.Decode(entry.Type, entry.Details)
		if err != nil {
			t.Fatalf("decode %s: %v", entry.Type, err)
		}
		if got.String() != actions[i].String() {
			t.Errorf("round trip %d: got %s, want %s", i, got, actions[i])
		}
	}
}
