package agent

import (
	"context"
	"fmt"
	"sort"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/hexgrid"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Bot - "игрок-компьютер" (Headless Agent).
// Видит мир так же, как клиент: только снимок с туманом войны.
// По снимку выбирает действие и отдает его симуляции через Submit,
// поэтому лог действий бота - обычный реплей.
//
// Жизненный цикл:
//  1. NewBot - привязка к симуляции.
//  2. Play - ходы до конца игры или лимита ходов.
//  3. decide - разбор снимка и выбор одного действия.
type Bot struct {
	Inst *engine.Instance
	// Лимит ходов игрока
	MaxTurns int
	// Лимит действий за ход, потом endTurn
	MaxActionsPerTurn int

	log *logrus.Entry
}

// Summary - итог прогона бота
type Summary struct {
	Turns    int
	Actions  int
	Rejected int
	Phase    string
	Reason   string
}

func NewBot(inst *engine.Instance, maxTurns int) *Bot {
	return &Bot{
		Inst:              inst,
		MaxTurns:          maxTurns,
		MaxActionsPerTurn: 8,
		log:               logger.Component("bot").WithField("player_id", inst.Player.ID),
	}
}

// Play играет, пока игра не окончена, ходы не кончились или ctx не отменен
func (b *Bot) Play(ctx context.Context) (Summary, error) {
	var sum Summary
	state := b.Inst.Snapshot(b.Inst.Drain())
	turn, perTurn, stuck := state.Turn, 0, false

	for !b.Inst.Turns.IsOver() && state.Turn <= b.MaxTurns {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if state.Turn != turn {
			turn, perTurn, stuck = state.Turn, 0, false
		}

		action := domain.EndTurn()
		if !stuck && perTurn < b.MaxActionsPerTurn {
			action = b.decide(state)
		}

		out, err := b.Inst.Submit(action)
		if err != nil {
			return sum, fmt.Errorf("bot action %s: %w", action, err)
		}
		perTurn++
		if out.Rejected != nil {
			sum.Rejected++
			// После отказа в этом ходу больше не пробуем
			stuck = true
			b.log.WithFields(logrus.Fields{
				"action": action.String(),
				"reason": out.Rejected.Reason,
			}).Debug("Bot action rejected")
		} else {
			sum.Actions++
		}
		state = b.Inst.Snapshot(out.Events)
	}

	sum.Turns = b.Inst.Turns.Turn
	sum.Phase = b.Inst.Turns.Phase.String()
	sum.Reason = b.Inst.Turns.Reason
	b.log.WithFields(logrus.Fields{
		"turns":    sum.Turns,
		"actions":  sum.Actions,
		"rejected": sum.Rejected,
		"phase":    sum.Phase,
	}).Info("Bot finished")
	return sum, nil
}

// decide - мозг бота: враг, потом портал, потом разведка
func (b *Bot) decide(state api.ServerResponse) domain.Action {
	me, ok := findSelf(state)
	if !ok || me.Stats == nil || me.Stats.IsDead || me.Stats.AP == 0 {
		return domain.EndTurn()
	}
	pos := toHex(me.Pos)

	// 1. Ближайший видимый враг: клик по его клетке (подход + атака)
	if enemy, ok := nearest(pos, state.Entities, "enemy"); ok {
		return domain.PlayerInputAt(toHex(enemy.Pos))
	}

	// 2. Врагов не видно: портал. Взаимодействие само подводит к нему.
	if portal, ok := nearest(pos, state.Entities, "portal"); ok {
		return domain.InteractWith(domain.EntityID(portal.ID))
	}

	// 3. Разведка: ближайшая клетка на краю видимости
	if target, ok := frontier(pos, state.Map); ok {
		return domain.MoveTo(target)
	}
	return domain.EndTurn()
}

func findSelf(state api.ServerResponse) (api.EntityView, bool) {
	for _, e := range state.Entities {
		if e.ID == state.MyEntityID {
			return e, true
		}
	}
	return api.EntityView{}, false
}

// nearest - ближайшая живая сущность вида kind. При равенстве - по ID.
func nearest(from hexgrid.Hex, entities []api.EntityView, kind string) (api.EntityView, bool) {
	var candidates []api.EntityView
	for _, e := range entities {
		if e.Kind != kind || (e.Stats != nil && e.Stats.IsDead) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return api.EntityView{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := hexgrid.Distance(from, toHex(candidates[i].Pos))
		dj := hexgrid.Distance(from, toHex(candidates[j].Pos))
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

// frontier - ближайшая проходимая клетка с частичной видимостью
func frontier(from hexgrid.Hex, tiles []api.TileView) (hexgrid.Hex, bool) {
	best, found, bestDist := hexgrid.Hex{}, false, 0
	for _, t := range tiles {
		if t.IsObstacle || t.Visibility != "partial" {
			continue
		}
		h := hexgrid.Hex{Q: t.Q, R: t.R}
		d := hexgrid.Distance(from, h)
		if d == 0 {
			continue
		}
		if !found || d < bestDist || (d == bestDist && (h.Q < best.Q || (h.Q == best.Q && h.R < best.R))) {
			best, found, bestDist = h, true, d
		}
	}
	return best, found
}

func toHex(c api.Coords) hexgrid.Hex {
	return hexgrid.Hex{Q: c.Q, R: c.R}
}
