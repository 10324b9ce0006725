package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"hextactics-server/internal/domain"
	"hextactics-server/pkg/api"
)

// Decoder превращает details записи лога в действие резолвера.
type Decoder func(raw json.RawMessage) (domain.Action, error)

// TypedBuilder - "чистое" преобразование готовой структуры T в действие
type TypedBuilder[T any] func(payload T) domain.Action

// WithPayload берет TypedBuilder и превращает его в стандартный Decoder.
// Она берет на себя Unmarshal и Validate.
func WithPayload[T any](build TypedBuilder[T]) Decoder {
	return func(raw json.RawMessage) (domain.Action, error) {
		var payload T

		// 1. Распаковка JSON
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return domain.Action{}, errors.New("details are required")
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return domain.Action{}, fmt.Errorf("invalid payload format: %w", err)
		}

		// 2. Автоматическая валидация
		// Проверяем, реализует ли структура T интерфейс Validator
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return domain.Action{}, fmt.Errorf("validation failed: %w", err)
			}
		}

		// 3. Сборка действия
		return build(payload), nil
	}
}

// WithEmptyPayload - обертка для команд без данных (endTurn)
func WithEmptyPayload(build func() domain.Action) Decoder {
	return func(_ json.RawMessage) (domain.Action, error) {
		// Мы просто игнорируем входящий JSON, так как он не нужен логике.
		return build(), nil
	}
}
