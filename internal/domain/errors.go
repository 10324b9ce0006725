package domain

import "fmt"

// Rejection - действие не прошло проверку. Состояние не изменено.
// Это не ошибка Go: причина уходит вызывающему и в боевой лог.
type Rejection struct {
	Reason string `json:"reason"`
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Reject - сокращение для обработчиков
func Reject(format string, args ...interface{}) *Rejection {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError - ссылка на отсутствующий блюпринт/умение/статус.
// Логируется, сущность или действие пропускается, цикл ходов продолжается.
type ConfigurationError struct {
	Kind string
	ID   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}
