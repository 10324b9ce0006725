package actions

import (
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine/handlers"
)

func HandleEndTurn(ctx handlers.Context, _ domain.Action) handlers.Result {
	ctx.Events.Log(domain.LogInfo, ctx.Actor.ID, "%s завершает ход.", ctx.Actor.Name)
	return handlers.Result{EndTurn: true}
}
