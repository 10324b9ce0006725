package actions

import (
	"encoding/json"
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/hexgrid"
)

// Handlers - таблица обработчиков резолвера
func Handlers() map[domain.ActionType]handlers.HandlerFunc {
	return map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionMove:        HandleMove,
		domain.ActionAttack:      HandleAttack,
		domain.ActionInteract:    HandleInteract,
		domain.ActionSkill:       HandleSkill,
		domain.ActionPlayerInput: HandlePlayerInput,
		domain.ActionEndTurn:     HandleEndTurn,
	}
}

// Decoders - разбор details записей лога по типу
func Decoders() map[domain.ActionType]handlers.Decoder {
	return map[domain.ActionType]handlers.Decoder{
		domain.ActionMove: handlers.WithPayload(func(p api.CoordsPayload) domain.Action {
			return domain.MoveTo(toHex(*p.TargetCoords))
		}),
		domain.ActionAttack: handlers.WithPayload(func(p api.EntityPayload) domain.Action {
			return domain.AttackTarget(domain.EntityID(p.TargetID))
		}),
		domain.ActionInteract: handlers.WithPayload(func(p api.EntityPayload) domain.Action {
			return domain.InteractWith(domain.EntityID(p.TargetID))
		}),
		domain.ActionSkill: handlers.WithPayload(func(p api.SkillPayload) domain.Action {
			if p.TargetCoords != nil {
				return domain.UseSkillAt(p.SkillID, toHex(*p.TargetCoords))
			}
			return domain.UseSkillOn(p.SkillID, domain.EntityID(p.TargetID))
		}),
		domain.ActionPlayerInput: handlers.WithPayload(func(p api.CoordsPayload) domain.Action {
			return domain.PlayerInputAt(toHex(*p.TargetCoords))
		}),
		domain.ActionEndTurn: handlers.WithEmptyPayload(domain.EndTurn),
	}
}

// Encode - обратное преобразование: действие в details записи лога
func Encode(a domain.Action) (json.RawMessage, error) {
	var payload interface{}
	switch a.Type {
	case domain.ActionMove, domain.ActionPlayerInput:
		if a.Target == nil {
			return nil, fmt.Errorf("%s without target", a.Type)
		}
		payload = api.CoordsPayload{TargetCoords: toCoords(*a.Target)}
	case domain.ActionAttack, domain.ActionInteract:
		payload = api.EntityPayload{TargetID: string(a.TargetID)}
	case domain.ActionSkill:
		p := api.SkillPayload{SkillID: a.SkillID, TargetID: string(a.TargetID)}
		if a.Target != nil {
			p.TargetCoords = toCoords(*a.Target)
		}
		payload = p
	case domain.ActionEndTurn:
		payload = struct{}{}
	default:
		return nil, fmt.Errorf("cannot encode action %s", a.Type)
	}
	return json.Marshal(payload)
}

func toHex(c api.Coords) hexgrid.Hex {
	return hexgrid.Hex{Q: c.Q, R: c.R}
}

func toCoords(h hexgrid.Hex) *api.Coords {
	return &api.Coords{Q: h.Q, R: h.R}
}
