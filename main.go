package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrywsong/studiobot-sub000/cmd"
	"github.com/harrywsong/studiobot-sub000/config"
	"github.com/harrywsong/studiobot-sub000/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Get()
	setupLogging(cfg.Environment)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigration(os.Args[2:]); err != nil {
			log.WithField("error", err).Fatal("Migration failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.WithField("error", err).Fatal("Bot exited with error")
	}
}

// setupLogging configures logrus for the environment. Production logs JSON
// for ingestion, everything else stays human readable.
func setupLogging(environment string) {
	if environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.DebugLevel)
}

func runMigration(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: studiobot migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
