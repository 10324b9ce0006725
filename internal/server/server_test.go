package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/dungeon"
	"hextactics-server/pkg/logger"

	"github.com/gorilla/websocket"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type memReplays struct {
	mu    sync.Mutex
	saved []domain.ReplaySession
}

func (m *memReplays) Save(s *domain.ReplaySession) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *s)
	return "mem://" + string(s.TrackedID), nil
}

func (m *memReplays) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func newTestServer(t *testing.T) (*Server, *memReplays, *httptest.Server) {
	t.Helper()
	replays := &memReplays{}
	srv := New(engine.NewService(dungeon.DefaultRules(), nil), replays, ":0")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, replays, ts
}

func liveLog(t *testing.T) domain.ReplaySession {
	t.Helper()
	inst, err := engine.NewInstance(dungeon.DefaultRules(), engine.Config{Seed: "server-test", Actor: domain.ActorState{Archetype: "warrior"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Submit(domain.EndTurn()); err != nil {
		t.Fatal(err)
	}
	return inst.ReplayLog()
}

func postVerify(t *testing.T, url string, body []byte) (*http.Response, api.VerifyResponse) {
	t.Helper()
	resp, err := http.Post(url+"/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out api.VerifyResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp, out
}

func TestVerifyEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t)
	good := liveLog(t)

	broken := good
	broken.Actions = []domain.ReplayAction{{Type: "dance", SourceID: good.TrackedID}}

	goodBody, _ := json.Marshal(good)
	brokenBody, _ := json.Marshal(broken)

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
		wantValid  bool
		wantIndex  int
	}{
		{name: "valid", body: goodBody, wantStatus: http.StatusOK, wantValid: true},
		{name: "unknown action", body: brokenBody, wantStatus: http.StatusOK, wantIndex: 0},
		{name: "malformed json", body: []byte(`{"seed":`), wantStatus: http.StatusBadRequest},
		{name: "missing seed", body: []byte(`{"actions":[]}`), wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, v := postVerify(t, ts.URL, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if v.Type != api.TypeVerdict || v.Valid != tt.wantValid {
				t.Fatalf("unexpected verdict %+v", v)
			}
			if tt.wantValid {
				if v.Applied != 1 || v.Digest == "" || len(v.Stats) == 0 {
					t.Errorf("valid verdict incomplete: %+v", v)
				}
				return
			}
			if v.Index == nil || *v.Index != tt.wantIndex {
				t.Errorf("want failure at %d, got %+v", tt.wantIndex, v)
			}
		})
	}
}

func TestVerifyEndpoint_MethodNotAllowed(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/verify")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestHealthVersionDebug(t *testing.T) {
	_, _, ts := newTestServer(t)

	tests := []struct {
		path     string
		wantBody string
	}{
		{path: "/health", wantBody: "ok"},
		{path: "/version", wantBody: "BuildID"},
		{path: "/debug/sessions", wantBody: "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			var buf bytes.Buffer
			buf.ReadFrom(resp.Body)
			if resp.StatusCode != http.StatusOK || !strings.Contains(buf.String(), tt.wantBody) {
				t.Errorf("%s: %d %q", tt.path, resp.StatusCode, buf.String())
			}
		})
	}
}

func TestWebSocketSession(t *testing.T) {
	srv, replays, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	login := api.ClientCommand{Action: api.ActionInit, Payload: json.RawMessage(`{"seed":"ws-seed","archetype":"rogue"}`)}
	if err := conn.WriteJSON(login); err != nil {
		t.Fatal(err)
	}

	var first api.ServerResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read init snapshot: %v", err)
	}
	if first.Type != api.TypeUpdate || first.MyEntityID == "" || first.Phase != "playerTurn" {
		t.Fatalf("unexpected snapshot %+v", first)
	}
	if len(srv.Engine.Sessions()) != 1 {
		t.Fatalf("session not registered")
	}

	// Чужой Token подменяется на ID игрока сессии
	if err := conn.WriteJSON(api.ClientCommand{Token: "e_intruder", Action: "endTurn", Payload: json.RawMessage(`{}`)}); err != nil {
		t.Fatal(err)
	}
	var next api.ServerResponse
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.Type != api.TypeUpdate || next.Error != "" {
		t.Fatalf("endTurn failed: %+v", next)
	}

	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for replays.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if replays.count() != 1 {
		t.Fatalf("replay not saved on disconnect")
	}
	if n := len(srv.Engine.Sessions()); n != 0 {
		t.Errorf("%d sessions left after disconnect", n)
	}
	saved := replays.saved[0]
	if saved.Seed != "ws-seed" || saved.Actor.Archetype != "rogue" || len(saved.Actions) != 1 {
		t.Errorf("unexpected saved log %+v", saved)
	}
}

func TestWebSocketHandshakeRejected(t *testing.T) {
	_, _, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	tests := []struct {
		name string
		cmd  api.ClientCommand
		want string
	}{
		{name: "not init", cmd: api.ClientCommand{Action: "move"}, want: "first command must be init"},
		{name: "unknown map", cmd: api.ClientCommand{Action: api.ActionInit, Payload: json.RawMessage(`{"mapId":"nowhere"}`)}, want: "nowhere"},
		{name: "unknown archetype", cmd: api.ClientCommand{Action: api.ActionInit, Payload: json.RawMessage(`{"archetype":"bard"}`)}, want: "bard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))

			if err := conn.WriteJSON(tt.cmd); err != nil {
				t.Fatal(err)
			}
			var resp api.ServerResponse
			if err := conn.ReadJSON(&resp); err != nil {
				t.Fatalf("read: %v", err)
			}
			if resp.Type != api.TypeError || !strings.Contains(resp.Error, tt.want) {
				t.Errorf("got %+v, want error with %q", resp, tt.want)
			}
		})
	}
}
