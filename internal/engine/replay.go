package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// IntegrityError - лог действий не соответствует миру, в котором его проигрывают.
// Index - позиция записи в логе (-1 = заголовок сессии).
type IntegrityError struct {
	Index  int
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Index < 0 {
		return "replay integrity: " + e.Reason
	}
	return fmt.Sprintf("replay integrity at action %d: %s", e.Index, e.Reason)
}

func integrity(format string, args ...interface{}) *IntegrityError {
	return &IntegrityError{Index: -1, Reason: fmt.Sprintf(format, args...)}
}

// ReplayResult - итог повтора сессии
type ReplayResult struct {
	TrackedID domain.EntityID
	Stats     *domain.StatsComponent
	Canonical []byte
	Digest    string // SHA-256 от Canonical, hex
	Turn      int
	Phase     Phase
	Applied   int
	Rejected  int
	Skipped   int // записи других источников
}

// Replay проигрывает сессию заново на свежей симуляции с тем же набором правил.
// AI не читается из лога, а выводится заново. Одинаковый вход дает побайтно одинаковый результат.
func Replay(rules *domain.Rules, s domain.ReplaySession) (*ReplayResult, error) {
	inst, err := NewInstance(rules, Config{Seed: s.Seed, MapID: s.MapID, Actor: s.Actor})
	if err != nil {
		return nil, fmt.Errorf("replay setup: %w", err)
	}
	inst.Drain()

	tracked := s.TrackedID
	if tracked == "" {
		tracked = inst.Player.ID
	}
	if tracked != inst.Player.ID {
		return nil, integrity("tracked actor %q does not match generated %q", tracked, inst.Player.ID)
	}

	res := &ReplayResult{TrackedID: tracked}
	for idx, entry := range s.Actions {
		if entry.SourceID != tracked {
			res.Skipped++
			continue
		}

		out, err := inst.Perform(entry)
		if err != nil {
			var ie *IntegrityError
			if errors.As(err, &ie) {
				ie.Index = idx
				return nil, ie
			}
			return nil, fmt.Errorf("replay action %d: %w", idx, err)
		}
		if out.Rejected != nil {
			res.Rejected++
			continue
		}
		res.Applied++
	}

	res.Stats = inst.Player.Stats.Snapshot()
	res.Canonical = res.Stats.Canonical()
	sum := sha256.Sum256(res.Canonical)
	res.Digest = hex.EncodeToString(sum[:])
	res.Turn = inst.Turns.Turn
	res.Phase = inst.Turns.Phase

	logger.Component("replay").WithFields(logrus.Fields{
		"seed":     s.Seed,
		"tracked":  tracked,
		"applied":  res.Applied,
		"rejected": res.Rejected,
		"digest":   res.Digest,
	}).Info("Replay finished")
	return res, nil
}
