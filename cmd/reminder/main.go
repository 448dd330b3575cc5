package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"clinicbook/config"
	"clinicbook/di"
	"clinicbook/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeReminderWorker()

	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Reminder worker exited")
	}
}
