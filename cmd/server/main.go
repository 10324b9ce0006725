package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hextactics-server/internal/agent"
	"hextactics-server/internal/config"
	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine"
	"hextactics-server/internal/infrastructure/storage"
	"hextactics-server/internal/server"
	"hextactics-server/internal/version"
	"hextactics-server/pkg/dungeon"
	"hextactics-server/pkg/logger"
)

func main() {
	// 1. Парсинг конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var (
		seed       string
		archetype  string
		replayPath string
		simulate   int
		exportDir  string
	)
	flag.StringVar(&seed, "seed", "", "Master seed for -simulate (empty for random)")
	flag.StringVar(&archetype, "archetype", "", "Player archetype for -simulate")
	flag.StringVar(&replayPath, "replay", "", "Path to .hxrp or .json replay to verify")
	flag.IntVar(&simulate, "simulate", 0, "Let the bot play N turns, save and verify its replay")
	flag.StringVar(&exportDir, "export-content", "", "Write the content bundle as YAML into dir and exit")
	flag.Parse()

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Starting HexTactics...")
	logger.Log.Info(version.String())

	rules, err := loadRules(cfg.ContentDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load content")
	}
	logger.Log.WithField("digest", rules.Digest()).Info("Content loaded")

	if exportDir != "" {
		if err := storage.DumpRules(exportDir, rules); err != nil {
			logger.Log.WithError(err).Fatal("Failed to export content")
		}
		logger.Log.WithField("dir", exportDir).Info("Content exported")
		return
	}

	replays, err := storage.NewReplayService(cfg.ReplayDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to prepare replay dir")
	}
	verdicts, err := storage.OpenVerdicts(cfg.DBPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open verdict store")
	}
	defer verdicts.Close()

	// 2. Инициализация ядра
	gameService := engine.NewService(rules, verdicts)
	gameService.CommandBuffer = cfg.CommandBuffer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// РЕЖИМ ПРОВЕРКИ РЕПЛЕЯ
	if replayPath != "" {
		logger.Log.Info("Mode: Replay Verification")
		session, err := replays.Load(replayPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to load replay")
		}
		if !printVerdict(ctx, gameService, *session) {
			os.Exit(1)
		}
		return
	}

	// РЕЖИМ СИМУЛЯЦИИ БОТОМ
	if simulate > 0 {
		logger.Log.Info("Mode: Bot Simulation")
		engineCfg := engine.NewConfig()
		if seed != "" {
			engineCfg.Seed = seed
		}
		engineCfg.Actor = domain.ActorState{Archetype: archetype}
		logger.Log.Infof("Using master seed: %s", engineCfg.Seed)

		inst, err := engine.NewInstance(rules, engineCfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to start simulation")
		}
		if _, err := agent.NewBot(inst, simulate).Play(ctx); err != nil {
			logger.Log.WithError(err).Fatal("Bot failed")
		}

		session := inst.ReplayLog()
		path, err := replays.Save(&session)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to save replay")
		}
		logger.Log.WithField("path", path).Info("Replay saved")
		if !printVerdict(ctx, gameService, session) {
			os.Exit(1)
		}
		return
	}

	// 3. Запуск сервера
	srv := server.New(gameService, replays, cfg.Addr())
	if err := srv.Run(ctx); err != nil {
		logger.Log.WithError(err).Error("Server stopped with error")
	}

	logger.Log.Info("Shutting down...")

	// Сохраняем логи всех активных сессий
	for _, sess := range gameService.Shutdown() {
		log := sess.Instance.ReplayLog()
		if len(log.Actions) == 0 {
			continue
		}
		if _, err := replays.Save(&log); err != nil {
			logger.Log.WithError(err).WithField("session_id", sess.ID).Error("Failed to save replay")
		}
	}

	logger.Log.Info("Done.")
}

func loadRules(dir string) (*domain.Rules, error) {
	if dir == "" {
		return dungeon.DefaultRules(), nil
	}
	return storage.LoadRules(dir)
}

// printVerdict проверяет сессию, печатает вердикт в stdout и сообщает, валиден ли он
func printVerdict(ctx context.Context, svc *engine.GameService, session domain.ReplaySession) bool {
	v, err := svc.Verify(ctx, session)
	if err != nil {
		logger.Log.WithError(err).Fatal("Verification failed")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(server.VerdictResponse(v)); err != nil {
		logger.Log.WithError(err).Error("Failed to print verdict")
	}
	return v.Valid
}
