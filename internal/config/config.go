package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config - настройки сервера из окружения. Флаги cmd/server идут поверх.
type Config struct {
	Port       string `env:"HEXT_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	ContentDir string `env:"HEXT_CONTENT_DIR"` // пусто - встроенный бандл
	ReplayDir  string `env:"HEXT_REPLAY_DIR" envDefault:"replays"`
	DBPath     string `env:"HEXT_DB_PATH" envDefault:"verdicts.db"`
	// Емкость очереди команд одной сессии
	CommandBuffer int `env:"HEXT_COMMAND_BUFFER" envDefault:"64"`
}

// ParseEnv заполняет target из переменных окружения
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load читает Config и проверяет значения
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return Config{}, fmt.Errorf("HEXT_PORT must not be empty")
	}
	if cfg.CommandBuffer <= 0 {
		return Config{}, fmt.Errorf("HEXT_COMMAND_BUFFER must be positive, got %d", cfg.CommandBuffer)
	}
	return cfg, nil
}

// Addr - адрес для http.Server
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
