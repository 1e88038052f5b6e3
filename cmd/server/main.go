package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/alvinobieroh/devlinks-api/internal/config"
	"github.com/alvinobieroh/devlinks-api/internal/email"
	"github.com/alvinobieroh/devlinks-api/internal/server"
	"github.com/alvinobieroh/devlinks-api/internal/storage/postgres"
)

func main() {
	log := newLogger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}
	defer store.Close()

	mailer, err := newMailer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init mailer")
	}

	srv := server.New(cfg, log, server.Stores{Users: store, Links: store}, mailer)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("devlinks API listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("APP_ENV") == config.EnvProduction {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newMailer(cfg config.Config, log zerolog.Logger) (email.Sender, error) {
	if cfg.EmailDriver == "smtp" {
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	}
	return email.NewLogSender(log), nil
}
