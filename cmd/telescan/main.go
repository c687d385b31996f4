// Package main contains the entrypoint for the telescan bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/tzachyh/telescan/internal/bot"
	"github.com/tzachyh/telescan/internal/bot/handlers"
	"github.com/tzachyh/telescan/internal/bot/tasks"
	"github.com/tzachyh/telescan/internal/config"
	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/gemini"
	"github.com/tzachyh/telescan/internal/ingest"
	"github.com/tzachyh/telescan/internal/logger"
	"github.com/tzachyh/telescan/internal/retrieve"
	srctelegram "github.com/tzachyh/telescan/internal/source/telegram"
	"github.com/tzachyh/telescan/internal/summarize"
	"github.com/tzachyh/telescan/internal/telegram"
	"github.com/tzachyh/telescan/internal/timewindow"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// database, collector, AI client, bot, scheduler), handles graceful
// shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	loc, err := cfg.Window.Location()
	if err != nil {
		log.Error("Failed to load reference time zone", "error", err)
		return 1
	}

	window := timewindow.Resolve(cfg.Window.Start, cfg.Window.End, cfg.Window.Lookback, loc)
	log.Info("Active time window",
		"start", window.Start.Format(time.RFC3339),
		"end", window.End.Format(time.RFC3339),
		"timezone", cfg.Window.Timezone)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, loc, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	collector := srctelegram.NewCollector(cfg.Source.Channel, log)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(collector.Handler),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}
	collector.Bind(tg)

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	cfg.Telegram.BotInfo = config.BotInfo{ID: me.ID, Username: me.Username, FirstName: me.FirstName}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	ingestor := ingest.New(collector, store, cfg.Source.Channel, cfg.Source.AuthorHandle, cfg.Source.AuthorSignature, log)
	retriever := retrieve.New(store, log)
	summarizer := summarize.New(gemClient, cfg.Messages.InsufficientData, log)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Ingestor:   ingestor,
		Retriever:  retriever,
		Summarizer: summarizer,
		Window:     window,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Ingestor: ingestor,
		Window:   window,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, db, store, gemClient, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
