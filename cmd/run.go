package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"honorbot/bot"
	"honorbot/config"
	"honorbot/dashboard"
	"honorbot/database"
	"honorbot/events"
	"honorbot/repository"
	"honorbot/service"
)

// dedupHorizon is how long processed message ids are remembered. Gateway
// redeliveries arrive within seconds; an hour is comfortable headroom.
const dedupHorizon = time.Hour

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting honorbot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	accrualService := service.NewAccrualService(uowFactory, service.AccrualConfig{
		MessageCooldown:  cfg.MessageCooldown,
		DailyRewardLimit: cfg.DailyRewardLimit,
		DailyWagerLimit:  cfg.DailyWagerLimit,
		StreakEnabled:    cfg.StreakEnabled,
	}, service.NewEventDedup(dedupHorizon))
	wagerService := service.NewWagerService(uowFactory, service.WagerConfig{
		MinStake:                cfg.MinStake,
		MaxStake:                cfg.MaxStake,
		DailyWagerLimit:         cfg.DailyWagerLimit,
		LuckyDrawWinProbability: cfg.LuckyDrawWinProbability,
		LuckyDrawWinAmount:      cfg.LuckyDrawWinAmount,
		LuckyDrawLossAmount:     cfg.LuckyDrawLossAmount,
	})
	leaderboardService := service.NewLeaderboardService(uowFactory)
	userService := service.NewUserService(uowFactory)
	adminService := service.NewAdminService(uowFactory)

	metrics := dashboard.NewMetrics()
	metrics.Observe(eventBus)

	var dashboardServer *dashboard.Server
	if cfg.DashboardAddr != "" {
		dashboardServer = dashboard.NewServer(cfg.DashboardAddr, cfg.DashboardToken,
			leaderboardService, adminService)
		dashboardServer.Start()
	}

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, accrualService, wagerService, leaderboardService,
		userService, adminService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	if dashboardServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := dashboardServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down dashboard: %v", err)
		}
		cancel()
	}

	db.Close()
	log.Info("Shutdown completed")

	return nil
}
