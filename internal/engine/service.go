package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/network"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VerdictStore - журнал вердиктов проверки реплеев
type VerdictStore interface {
	SaveVerdict(ctx context.Context, v domain.Verdict) error
}

// Session - живая симуляция, привязанная к клиенту
type Session struct {
	ID       string
	Instance *Instance
	Created  time.Time

	cancel context.CancelFunc
}

// SessionSummary - сводка для /debug/sessions
type SessionSummary struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId"`
	Seed      string `json:"seed"`
	MapID     string `json:"mapId"`
	Turn      int    `json:"turn"`
	Phase     string `json:"phase"`
	Actions   int    `json:"actions"`
	Entities  int    `json:"entities"`
	Connected bool   `json:"connected"`
	Created   int64  `json:"created"`
}

// GameService держит живые сессии и проверяет присланные реплеи.
// Набор правил один на все сессии и не меняется.
type GameService struct {
	Rules    *domain.Rules
	Hub      *network.Broadcaster
	Verdicts VerdictStore
	// Емкость CommandChan новых сессий, 0 - по умолчанию
	CommandBuffer int

	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logrus.Entry
}

func NewService(rules *domain.Rules, verdicts VerdictStore) *GameService {
	return &GameService{
		Rules:    rules,
		Hub:      network.NewBroadcaster(),
		Verdicts: verdicts,
		sessions: make(map[string]*Session),
		log:      logger.Component("game_service"),
	}
}

// CreateSession поднимает симуляцию и запускает ее цикл.
// Снимки уходят в Hub подписчику с ID игрока.
func (s *GameService) CreateSession(ctx context.Context, cfg Config) (*Session, error) {
	inst, err := NewInstance(s.Rules, cfg)
	if err != nil {
		return nil, err
	}
	if s.CommandBuffer > 0 {
		inst.CommandChan = make(chan api.ClientCommand, s.CommandBuffer)
	}

	runCtx, cancel := context.WithCancel(ctx)
	sess := &Session{
		ID:       uuid.NewString(),
		Instance: inst,
		Created:  time.Now(),
		cancel:   cancel,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	playerID := inst.Player.ID
	go inst.Run(runCtx, func(resp api.ServerResponse) {
		s.Hub.SendTo(playerID, resp)
	})

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"player_id":  playerID,
		"seed":       cfg.Seed,
	}).Info("Session created")
	return sess, nil
}

// Get возвращает сессию по ID
func (s *GameService) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Dispatch отправляет команду в цикл сессии. Не блокирует.
func (s *GameService) Dispatch(id string, cmd api.ClientCommand) error {
	sess := s.Get(id)
	if sess == nil {
		return fmt.Errorf("session %s not found", id)
	}
	select {
	case sess.Instance.CommandChan <- cmd:
		return nil
	default:
		return errors.New("session is busy")
	}
}

// Remove останавливает цикл сессии и возвращает ее (для сохранения реплея)
func (s *GameService) Remove(id string) *Session {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	sess.cancel()
	s.log.WithField("session_id", id).Info("Session removed")
	return sess
}

// Shutdown останавливает все сессии
func (s *GameService) Shutdown() []*Session {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sess.cancel()
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Created.Before(all[j].Created) })
	return all
}

// Sessions - сводка по всем живым сессиям
func (s *GameService) Sessions() []SessionSummary {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()

	out := make([]SessionSummary, 0, len(list))
	for _, sess := range list {
		inst := sess.Instance
		inst.mu.Lock()
		out = append(out, SessionSummary{
			ID:        sess.ID,
			PlayerID:  string(inst.Player.ID),
			Seed:      inst.Config.Seed,
			MapID:     inst.World.MapID,
			Turn:      inst.Turns.Turn,
			Phase:     inst.Turns.Phase.String(),
			Actions:   len(inst.Replay.Actions),
			Entities:  len(inst.World.Entities()),
			Connected: s.Hub.HasSubscriber(inst.Player.ID),
			Created:   sess.Created.Unix(),
		})
		inst.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created < out[j].Created })
	return out
}

// Verify проигрывает сессию и записывает вердикт.
// IntegrityError - это невалидный реплей, а не ошибка сервера.
func (s *GameService) Verify(ctx context.Context, session domain.ReplaySession) (domain.Verdict, error) {
	v := domain.Verdict{
		ID:        uuid.NewString(),
		Seed:      session.Seed,
		MapID:     session.MapID,
		TrackedID: session.TrackedID,
		CreatedAt: time.Now().UTC(),
	}

	res, err := Replay(s.Rules, session)
	var ie *IntegrityError
	var cfgErr *domain.ConfigurationError
	switch {
	case err == nil:
		v.Valid = true
		v.TrackedID = res.TrackedID
		v.Stats = res.Canonical
		v.Digest = res.Digest
		v.Turn = res.Turn
		v.Phase = res.Phase.String()
		v.Applied = res.Applied
		v.Rejected = res.Rejected
	case errors.As(err, &ie):
		v.Reason = ie.Reason
		if ie.Index >= 0 {
			idx := ie.Index
			v.Index = &idx
		}
	case errors.As(err, &cfgErr):
		v.Reason = cfgErr.Error()
	default:
		return v, err
	}

	s.log.WithFields(logrus.Fields{
		"verdict_id": v.ID,
		"valid":      v.Valid,
		"reason":     v.Reason,
	}).Info("Replay verified")

	if s.Verdicts != nil {
		if err := s.Verdicts.SaveVerdict(ctx, v); err != nil {
			return v, fmt.Errorf("save verdict: %w", err)
		}
	}
	return v, nil
}

// VerifyAll проверяет пачку сессий параллельно. Порядок вердиктов = порядок входа.
func (s *GameService) VerifyAll(ctx context.Context, sessions []domain.ReplaySession) ([]domain.Verdict, error) {
	verdicts := make([]domain.Verdict, len(sessions))
	errs := make([]error, len(sessions))

	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i], errs[i] = s.Verify(ctx, sessions[i])
		}(i)
	}
	wg.Wait()

	return verdicts, errors.Join(errs...)
}
