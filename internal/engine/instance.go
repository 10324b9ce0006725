package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/internal/engine/handlers/actions"
	"hextactics-server/internal/engine/handlers/events"
	"hextactics-server/internal/systems"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/dungeon"
	"hextactics-server/pkg/logger"
	"hextactics-server/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Outcome - итог одного действия игрока
type Outcome struct {
	Rejected *domain.Rejection
	Events   []domain.Event
	Phase    Phase
	Turn     int
}

// Instance - одна изолированная симуляция: карта, игрок, координатор ходов и лог действий.
// Все мутации идут через Submit/Perform; живой режим сериализует их через CommandChan.
type Instance struct {
	ID     string
	Config Config
	Rules  *domain.Rules

	World  *domain.GameWorld
	Player *domain.Entity
	Turns  *TurnManager

	// Лог принятых действий игрока
	Replay *domain.ReplaySession

	// Команды от клиента (живой режим)
	CommandChan chan api.ClientCommand

	rng      *utils.SeededRNG
	factory  *dungeon.Factory
	resolver *Resolver
	events   *domain.EventBuffer
	log      *logrus.Entry

	mu sync.Mutex
}

// NewInstance поднимает симуляцию: создает игрока, строит стартовую карту,
// объявляет первые намерения и открывает ход игрока.
func NewInstance(rules *domain.Rules, cfg Config) (*Instance, error) {
	mapID := cfg.MapID
	if mapID == "" {
		mapID = rules.StartMap
	}
	tmpl, err := rules.Map(mapID)
	if err != nil {
		return nil, err
	}

	rng := utils.NewSeededRNG(cfg.Seed)
	factory := dungeon.NewFactory(rules, rng)
	resolver := NewResolver(rules)

	// Игрок создается первым: его ID - первые вызовы RNG
	player, err := factory.CreatePlayer(cfg.Actor)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	world, err := dungeon.NewLevel(tmpl, rules, rng).WithFactory(factory).WithPlayer(player).Build()
	if err != nil {
		return nil, fmt.Errorf("build map %s: %w", tmpl.ID, err)
	}

	inst := &Instance{
		ID:          string(player.ID),
		Config:      cfg,
		Rules:       rules,
		World:       world,
		Player:      player,
		Turns:       NewTurnManager(rules, resolver),
		CommandChan: make(chan api.ClientCommand, 100),
		rng:         rng,
		factory:     factory,
		resolver:    resolver,
		events:      &domain.EventBuffer{},
		Replay: &domain.ReplaySession{
			Seed:      cfg.Seed,
			MapID:     tmpl.ID,
			TrackedID: player.ID,
			Actor:     cfg.Actor,
			Timestamp: time.Now().Unix(),
			Actions:   make([]domain.ReplayAction, 0),
		},
	}
	inst.log = logger.Component("instance").WithFields(logrus.Fields{
		"player_id": player.ID,
		"seed":      cfg.Seed,
	})

	systems.UpdateVisibility(world, player)
	inst.Turns.DeclareIntents(world, player, inst.events)
	inst.Turns.BeginPlayerTurn(world, player, inst.events)

	inst.log.WithFields(logrus.Fields{
		"map_id":   tmpl.ID,
		"entities": len(world.Entities()),
	}).Info("Instance started")
	return inst, nil
}

// Perform исполняет запись лога. Ошибки разбора и ссылки на несуществующее -
// IntegrityError; отказ по правилам возвращается в Outcome.
func (i *Instance) Perform(entry domain.ReplayAction) (*Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Turns.IsOver() {
		return nil, integrity("action after game over")
	}
	if entry.SourceID != i.Player.ID {
		return nil, integrity("source %q is not the tracked actor %q", entry.SourceID, i.Player.ID)
	}

	a, err := i.resolver.Decode(entry.Type, entry.Details)
	if err != nil {
		return nil, integrity("%v", err)
	}
	if err := i.checkReferences(a); err != nil {
		return nil, err
	}
	return i.submit(a)
}

// Submit исполняет уже разобранное действие игрока
func (i *Instance) Submit(a domain.Action) (*Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Turns.IsOver() {
		return nil, integrity("action after game over")
	}
	return i.submit(a)
}

func (i *Instance) submit(a domain.Action) (*Outcome, error) {
	if i.Turns.Phase != PhasePlayerTurn {
		return nil, fmt.Errorf("not a player turn: %s", i.Turns.Phase)
	}

	res := i.resolver.Resolve(i.World, i.Player, a, i.events)
	if res.Rejected != nil {
		return i.outcome(res.Rejected), nil
	}
	i.record(a)

	if res.Transition != nil {
		if err := i.transition(*res.Transition); err != nil {
			return nil, err
		}
	}

	switch {
	case i.Turns.IsOver():
	case !i.Player.IsAlive():
		i.Turns.GameOver("player died", i.events)
	case res.EndTurn || i.Player.Stats.AP == 0:
		i.Turns.EndPlayerTurn(i.World, i.Player, i.events)
	}
	return i.outcome(nil), nil
}

// checkReferences - клетки и сущности из записи лога должны существовать
func (i *Instance) checkReferences(a domain.Action) error {
	if a.Target != nil && i.World.TileAt(*a.Target) == nil {
		return integrity("unknown coordinates %s", *a.Target)
	}
	if a.TargetID != "" && i.World.GetEntity(a.TargetID) == nil {
		return integrity("missing entity %s", a.TargetID)
	}
	return nil
}

// transition - портал. Пустой NextMapID завершает игру.
func (i *Instance) transition(t handlers.Transition) error {
	if t.NextMapID == "" {
		i.Turns.GameOver("dungeon cleared", i.events)
		return nil
	}

	world, err := events.HandleMapTransition(events.TransitionContext{
		Rules: i.Rules,
		Builder: func(tmpl domain.MapTemplate) *dungeon.LevelBuilder {
			return dungeon.NewLevel(tmpl, i.Rules, i.rng).WithFactory(i.factory)
		},
		World:  i.World,
		Player: i.Player,
		Events: i.events,
	}, t)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			// Игрок остается на портале, игра продолжается
			i.log.WithError(err).WithField("portal_id", t.PortalID).Error("Portal leads to unknown map")
			return nil
		}
		i.Turns.GameOver("map load failed", i.events)
		return err
	}

	i.World = world
	if i.Player.Visibility != nil {
		i.Player.Visibility.LastOrigin = nil
	}
	systems.UpdateVisibility(world, i.Player)
	i.Turns.DeclareIntents(world, i.Player, i.events)
	i.Turns.BeginPlayerTurn(world, i.Player, i.events)
	return nil
}

func (i *Instance) record(a domain.Action) {
	details, err := actions.Encode(a)
	if err != nil {
		i.log.WithError(err).Error("Failed to encode action for replay")
		return
	}
	i.Replay.Actions = append(i.Replay.Actions, domain.ReplayAction{
		Type:     a.Type.String(),
		SourceID: i.Player.ID,
		Details:  details,
	})
}

func (i *Instance) outcome(rej *domain.Rejection) *Outcome {
	evs := i.events.Drain()
	i.logEvents(evs)
	return &Outcome{
		Rejected: rej,
		Events:   evs,
		Phase:    i.Turns.Phase,
		Turn:     i.Turns.Turn,
	}
}

// Drain забирает события, накопленные вне действий (загрузка карты)
func (i *Instance) Drain() []domain.Event {
	i.mu.Lock()
	defer i.mu.Unlock()
	evs := i.events.Drain()
	i.logEvents(evs)
	return evs
}

// Snapshot - снимок состояния для наблюдателя
func (i *Instance) Snapshot(evs []domain.Event) api.ServerResponse {
	i.mu.Lock()
	defer i.mu.Unlock()
	return BuildState(i, evs)
}

// Run - игровой цикл живой сессии. Команды исполняются строго по одной,
// после каждой наблюдатель получает снимок.
func (i *Instance) Run(ctx context.Context, publish func(api.ServerResponse)) {
	i.log.Info("Instance loop started")
	defer i.log.Info("Instance loop stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-i.CommandChan:
			if !ok {
				return
			}
			publish(i.handleCommand(cmd))
		}
	}
}

func (i *Instance) handleCommand(cmd api.ClientCommand) api.ServerResponse {
	if cmd.Action == api.ActionInit {
		return i.Snapshot(i.Drain())
	}

	out, err := i.Perform(domain.ReplayAction{
		Type:     cmd.Action,
		SourceID: domain.EntityID(cmd.Token),
		Details:  cmd.Payload,
	})
	if err != nil {
		i.log.WithError(err).WithField("action", cmd.Action).Warn("Command failed")
		resp := i.Snapshot(i.Drain())
		resp.Type = api.TypeError
		resp.Error = err.Error()
		return resp
	}

	resp := i.Snapshot(out.Events)
	if out.Rejected != nil {
		resp.Error = out.Rejected.Reason
	}
	return resp
}

// ReplayLog - копия лога действий для сохранения
func (i *Instance) ReplayLog() domain.ReplaySession {
	i.mu.Lock()
	defer i.mu.Unlock()
	cp := *i.Replay
	cp.Actions = append([]domain.ReplayAction(nil), i.Replay.Actions...)
	return cp
}
