package handlers

import (
	"hextactics-server/internal/domain"
)

// Context передает хендлеру состояние мира.
// Мы передаем ссылки, чтобы хендлер мог менять состояние (мутировать данные).
type Context struct {
	World  *domain.GameWorld
	Rules  *domain.Rules
	Actor  *domain.Entity // Тот, кто выполняет команду (Игрок или NPC)
	Events *domain.EventBuffer
}

// IsPlayer - действие выполняет игрок
func (c Context) IsPlayer() bool {
	return c.Actor != nil && c.Actor.Kind == domain.KindPlayer
}

// Transition - запрос перехода на другую карту (портал).
// Пустой NextMapID - выход из подземелья, игра окончена.
type Transition struct {
	PortalID  domain.EntityID
	NextMapID string
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ управляет фазами ходов, он возвращает данные координатору.
type Result struct {
	Rejected   *domain.Rejection
	Transition *Transition
	EndTurn    bool
}

// HandlerFunc - это контракт для любой команды (move, attack, etc).
// Вся проверка выполняется до первой мутации: отказ не меняет состояние.
type HandlerFunc func(ctx Context, action domain.Action) Result

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}

// Reject - отказ с причиной
func Reject(format string, args ...interface{}) Result {
	return Result{Rejected: domain.Reject(format, args...)}
}
