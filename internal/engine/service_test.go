package engine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/api"
)

type memVerdicts struct {
	mu    sync.Mutex
	saved []domain.Verdict
}

func (m *memVerdicts) SaveVerdict(_ context.Context, v domain.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, v)
	return nil
}

func TestGameService_Verify(t *testing.T) {
	store := &memVerdicts{}
	svc := NewService(duelRules(), store)
	live := playDuel(t)

	broken := *live.Replay
	broken.Actions = append([]domain.ReplayAction{}, live.Replay.Actions...)
	broken.Actions[1].Details = json.RawMessage(`{"targetId":"e_0000000000000000"}`)

	verdicts, err := svc.VerifyAll(context.Background(), []domain.ReplaySession{*live.Replay, broken})
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}

	ok := verdicts[0]
	if !ok.Valid || ok.Applied != 4 || ok.ID == "" {
		t.Errorf("valid session rejected: %+v", ok)
	}
	if string(ok.Stats) != string(live.Player.Stats.Canonical()) {
		t.Errorf("verdict stats %s, live %s", ok.Stats, live.Player.Stats.Canonical())
	}

	bad := verdicts[1]
	if bad.Valid || bad.Index == nil || *bad.Index != 1 {
		t.Errorf("broken session must fail at index 1: %+v", bad)
	}

	if len(store.saved) != 2 {
		t.Errorf("store got %d verdicts, want 2", len(store.saved))
	}
}

func TestGameService_LiveSession(t *testing.T) {
	svc := NewService(duelRules(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := svc.CreateSession(ctx, Config{Seed: testSeed})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	pid := sess.Instance.Player.ID
	updates := svc.Hub.Register(pid)

	recv := func() api.ServerResponse {
		t.Helper()
		select {
		case msg := <-updates:
			return msg
		case <-time.After(2 * time.Second):
			t.Fatal("no update from session loop")
		}
		return api.ServerResponse{}
	}

	if err := svc.Dispatch(sess.ID, api.ClientCommand{Action: api.ActionInit}); err != nil {
		t.Fatal(err)
	}
	first := recv()
	if first.MyEntityID != string(pid) || first.Phase != "playerTurn" {
		t.Fatalf("unexpected init snapshot: %+v", first)
	}

	move := api.ClientCommand{Token: string(pid), Action: "move", Payload: json.RawMessage(`{"targetCoords":{"q":-1,"r":0}}`)}
	if err := svc.Dispatch(sess.ID, move); err != nil {
		t.Fatal(err)
	}
	if msg := recv(); msg.Error != "" || msg.Type != api.TypeUpdate {
		t.Fatalf("move failed: %+v", msg)
	}

	bad := api.ClientCommand{Token: string(pid), Action: "dance", Payload: json.RawMessage(`{}`)}
	if err := svc.Dispatch(sess.ID, bad); err != nil {
		t.Fatal(err)
	}
	if msg := recv(); msg.Type != api.TypeError {
		t.Errorf("unknown action must answer with ERROR, got %+v", msg)
	}

	summaries := svc.Sessions()
	if len(summaries) != 1 || summaries[0].Actions != 1 || !summaries[0].Connected {
		t.Errorf("unexpected summaries %+v", summaries)
	}

	removed := svc.Remove(sess.ID)
	if removed == nil || svc.Get(sess.ID) != nil {
		t.Error("session must be removed")
	}
	if err := svc.Dispatch(sess.ID, move); err == nil {
		t.Error("dispatch to a removed session must fail")
	}
}
