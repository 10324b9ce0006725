package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// Создается сразу, чтобы симуляции в тестах и реплеях не падали на nil.
var Log = logrus.New()

// Init настраивает логгер из переменных окружения LOG_LEVEL и LOG_FORMAT.
// Используется в тестах (TestMain); сервер вызывает Configure с уже
// разобранным конфигом.
func Init() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure устанавливает уровень и формат.
// "json" - для продакшена и сбора логов, все остальное - текст для разработки.
func Configure(level, format string) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// SetOutput перенаправляет вывод (например, в io.Discard при массовой
// проверке реплеев).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// Component возвращает запись с полем component - так пишут все системы.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
