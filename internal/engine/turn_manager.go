package engine

import (
	"encoding/json"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/systems"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Phase - состояние координатора ходов
type Phase uint8

const (
	PhaseLoading Phase = iota
	PhasePlayerTurn
	PhaseEnemyTurn
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "playerTurn"
	case PhaseEnemyTurn:
		return "enemyTurn"
	case PhaseGameOver:
		return "gameOver"
	}
	return "loading"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// TurnManager - координатор: Loading -> PlayerTurn -> EnemyTurn -> PlayerTurn ... | GameOver.
// Порядок врагов в фазе - порядок создания на карте; это часть контракта реплея.
type TurnManager struct {
	Phase  Phase
	Turn   int
	Reason string // почему игра окончена

	rules    *domain.Rules
	resolver *Resolver
	log      *logrus.Entry
}

func NewTurnManager(rules *domain.Rules, resolver *Resolver) *TurnManager {
	return &TurnManager{
		Phase:    PhaseLoading,
		rules:    rules,
		resolver: resolver,
		log:      logger.Component("turn_manager"),
	}
}

func (tm *TurnManager) setPhase(p Phase, events *domain.EventBuffer) {
	if tm.Phase == PhaseGameOver || tm.Phase == p {
		return
	}
	tm.Phase = p
	events.Emit(domain.Event{Type: domain.EventPhaseChanged, Phase: p.String(), Value: tm.Turn})
	tm.log.WithFields(logrus.Fields{"phase": p.String(), "turn": tm.Turn}).Debug("Phase changed")
}

// GameOver - терминальное состояние. Повторный вызов ничего не делает.
func (tm *TurnManager) GameOver(reason string, events *domain.EventBuffer) {
	if tm.Phase == PhaseGameOver {
		return
	}
	tm.setPhase(PhaseGameOver, events)
	tm.Reason = reason
	events.Emit(domain.Event{Type: domain.EventGameOver, Text: reason, Value: tm.Turn})
	tm.log.WithFields(logrus.Fields{"turn": tm.Turn, "reason": reason}).Info("Game over")
}

// IsOver - игра окончена
func (tm *TurnManager) IsOver() bool {
	return tm.Phase == PhaseGameOver
}

// BeginPlayerTurn - вход в ход игрока: AP до максимума, счетчик ходов,
// тик статусов и перезарядок игрока, проверка обнаружения.
func (tm *TurnManager) BeginPlayerTurn(w *domain.GameWorld, player *domain.Entity, events *domain.EventBuffer) {
	if tm.IsOver() {
		return
	}
	tm.Turn++
	player.RestoreAP(events)
	systems.TickStatuses(w, tm.rules, player, events)
	systems.TickCooldowns(player, events)
	if !player.IsAlive() {
		tm.GameOver("player died", events)
		return
	}
	systems.RevealConcealed(w, player, events)
	tm.setPhase(PhasePlayerTurn, events)
}

// EndPlayerTurn - ход игрока закончен (явно или AP = 0): фаза врагов,
// затем новые намерения, затем снова ход игрока.
func (tm *TurnManager) EndPlayerTurn(w *domain.GameWorld, player *domain.Entity, events *domain.EventBuffer) {
	if tm.Phase != PhasePlayerTurn {
		return
	}
	tm.setPhase(PhaseEnemyTurn, events)

	tm.runEnemies(w, player, events)
	if !player.IsAlive() {
		tm.GameOver("player died", events)
		return
	}

	tm.DeclareIntents(w, player, events)
	tm.BeginPlayerTurn(w, player, events)
}

// runEnemies исполняет объявленные в прошлый раз намерения. Без переоценки.
func (tm *TurnManager) runEnemies(w *domain.GameWorld, player *domain.Entity, events *domain.EventBuffer) {
	for _, npc := range w.Entities() {
		if npc.IsRemoved() || !npc.IsAI() || !npc.IsAlive() {
			continue
		}

		// Начало сегмента
		npc.RestoreAP(events)
		systems.TickStatuses(w, tm.rules, npc, events)
		systems.TickCooldowns(npc, events)
		if !npc.IsAlive() || npc.IsRemoved() {
			continue
		}

		intent := npc.Behavior.Intent
		npc.Behavior.Intent = nil
		if intent == nil || intent.Kind == domain.IntentPass {
			continue
		}

		res := tm.resolver.Resolve(w, npc, intent.Action, events)
		if res.Rejected != nil {
			tm.log.WithFields(logrus.Fields{
				"npc_id": npc.ID,
				"intent": intent.String(),
				"reason": res.Rejected.Reason,
			}).Warn("AI intent rejected")
		}

		if !player.IsAlive() {
			return
		}
	}
}

// DeclareIntents - каждый живой AI объявляет действие на следующую фазу врагов
func (tm *TurnManager) DeclareIntents(w *domain.GameWorld, player *domain.Entity, events *domain.EventBuffer) {
	for _, npc := range w.Entities() {
		if !npc.IsAI() || !npc.IsAlive() {
			continue
		}
		intent := systems.ComputeIntent(w, tm.rules, npc, player, tm.Turn+1)
		npc.Behavior.Intent = &intent
		declared := intent
		events.Emit(domain.Event{Type: domain.EventIntentDeclared, EntityID: npc.ID, Intent: &declared})
	}
}
