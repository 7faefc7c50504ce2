package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot"
	"github.com/harrywsong/studiobot-sub000/cache"
	"github.com/harrywsong/studiobot-sub000/config"
	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/logging"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/repository"
	"github.com/harrywsong/studiobot-sub000/scrimstore"
	"github.com/harrywsong/studiobot-sub000/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting bot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	configService := service.NewGuildConfigService(uowFactory)
	economyService := service.NewEconomyService(uowFactory, configService)
	xpService := service.NewXPService(uowFactory)
	ticketService := service.NewTicketService(uowFactory)
	moderationService := service.NewModerationService(uowFactory)

	gameCache, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	scrimStore := scrimstore.New(cfg.ScrimDataPath)

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(
		bot.Config{Token: cfg.DiscordToken},
		bot.Services{
			Configs:    configService,
			Economy:    economyService,
			XP:         xpService,
			Tickets:    ticketService,
			Moderation: moderationService,
		},
		eventBus,
		gameCache,
		scrimStore,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Forward warnings and errors into Discord log channels
	logHook := logging.NewDiscordHook(configService, discordBot, models.ChannelLog, cfg.GlobalLogChannelID)
	logHook.Start()
	log.AddHook(logHook)

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	logHook.Stop()

	if err := discordBot.Close(); err != nil {
		log.WithField("error", err).Error("Failed to close Discord bot")
	}
	if err := gameCache.Close(); err != nil {
		log.WithField("error", err).Error("Failed to close cache")
	}
	db.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
