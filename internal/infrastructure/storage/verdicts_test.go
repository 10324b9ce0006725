package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hextactics-server/internal/domain"
)

func openTempStore(t *testing.T) *VerdictStore {
	t.Helper()
	store, err := OpenVerdicts(filepath.Join(t.TempDir(), "verdicts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenVerdictsRequiresPath(t *testing.T) {
	if _, err := OpenVerdicts("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestVerdictStore_SaveGet(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := 3

	valid := domain.Verdict{
		ID: "v-ok", Seed: "s1", MapID: "crypt_1", TrackedID: "p_1",
		Valid: true, Stats: []byte(`{"hp":27}`), Digest: "abc", Turn: 4, Phase: "playerTurn",
		Applied: 7, Rejected: 1, CreatedAt: created,
	}
	broken := domain.Verdict{
		ID: "v-bad", Seed: "s2", MapID: "crypt_1", TrackedID: "p_2",
		Reason: "unknown action type", Index: &idx, CreatedAt: created.Add(time.Minute),
	}
	for _, v := range []domain.Verdict{valid, broken} {
		if err := store.SaveVerdict(ctx, v); err != nil {
			t.Fatalf("save %s: %v", v.ID, err)
		}
	}

	got, err := store.GetVerdict(ctx, "v-ok")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Valid || got.Index != nil || string(got.Stats) != `{"hp":27}` || got.Applied != 7 || got.Rejected != 1 {
		t.Errorf("unexpected valid verdict %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created at %v, want %v", got.CreatedAt, created)
	}

	got, err = store.GetVerdict(ctx, "v-bad")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Valid || got.Index == nil || *got.Index != 3 || got.Stats != nil {
		t.Errorf("unexpected broken verdict %+v", got)
	}

	list, err := store.ListVerdicts(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "v-bad" {
		t.Errorf("list must be newest first: %+v", list)
	}
}

func TestVerdictStore_Errors(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	v := domain.Verdict{ID: "dup", Seed: "s", MapID: "m", TrackedID: "p"}
	if err := store.SaveVerdict(ctx, v); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveVerdict(ctx, v); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate save: %v", err)
	}
	if _, err := store.GetVerdict(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing get: %v", err)
	}
	if err := store.SaveVerdict(ctx, domain.Verdict{}); err == nil {
		t.Error("verdict without id must fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.SaveVerdict(cancelled, domain.Verdict{ID: "late"}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: %v", err)
	}
}

func TestVerdictStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.db")
	store, err := OpenVerdicts(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveVerdict(context.Background(), domain.Verdict{ID: "keep", Seed: "s", MapID: "m", TrackedID: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Повторное открытие не переприменяет миграции
	store, err = OpenVerdicts(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if _, err := store.GetVerdict(context.Background(), "keep"); err != nil {
		t.Errorf("verdict lost after reopen: %v", err)
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "plain", in: "CREATE TABLE a (x);", want: "CREATE TABLE a (x);"},
		{name: "up only", in: "-- +migrate Up\nCREATE TABLE a (x);", want: "\nCREATE TABLE a (x);"},
		{name: "up and down", in: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := upSection(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
