package systems

import (
	"hextactics-server/internal/domain"
	"hextactics-server/pkg/hexgrid"
)

// EntityProvider - интерфейс для поиска сущностей (чтобы не зависеть от карты напрямую)
type EntityProvider interface {
	GetEntity(id domain.EntityID) *domain.Entity
}

// ValidationResult - результат проверки цели
type ValidationResult struct {
	Target   *domain.Entity
	Distance int
	Valid    bool
	Message  string // Сообщение об ошибке, если Valid == false
}

// ValidateTarget проверяет, может ли actor выбрать targetID целью.
//
// Параметры:
// - rangeLimit: максимальная дистанция в клетках (< 0 - без проверки дистанции).
// - needLOS: нужна ли прямая видимость.
func ValidateTarget(actor *domain.Entity, targetID domain.EntityID, rangeLimit int, needLOS bool, finder EntityProvider, w *domain.GameWorld) ValidationResult {
	// 1. Поиск цели
	target := finder.GetEntity(targetID)
	if target == nil || target.IsRemoved() {
		return ValidationResult{Valid: false, Message: "Цель не найдена."}
	}

	// 2. Скрытую цель выбрать нельзя
	if target.IsHidden() {
		return ValidationResult{Valid: false, Message: "Цель не найдена."}
	}

	// 3. Проверка дистанции
	dist := hexgrid.Distance(actor.Pos, target.Pos)
	if rangeLimit >= 0 && dist > rangeLimit {
		return ValidationResult{Target: target, Distance: dist, Valid: false, Message: "Цель слишком далеко."}
	}

	// 4. Проверка видимости (Line of Sight)
	if needLOS && dist > 1 && !HasLineOfSight(w, actor.Pos, target.Pos) {
		return ValidationResult{Target: target, Distance: dist, Valid: false, Message: "Вы не видите цель."}
	}

	return ValidationResult{Target: target, Distance: dist, Valid: true}
}

// IsAttackable - живая цель со статами, не скрытая и не сам actor
func IsAttackable(actor, target *domain.Entity) bool {
	return target != nil && target != actor && target.IsAlive() && !target.IsHidden()
}
