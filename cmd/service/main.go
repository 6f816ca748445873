package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal"
	"github.com/tauhid97k/voters-info-api/internal/auth"
	"github.com/tauhid97k/voters-info-api/internal/config"
	"github.com/tauhid97k/voters-info-api/internal/logging"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "voters-info-api",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	tokenSecrets := auth.TokenSecrets{
		Access:  os.Getenv("ACCESS_TOKEN_SECRET"),
		Refresh: os.Getenv("REFRESH_TOKEN_SECRET"),
		Reset:   os.Getenv("RESET_TOKEN_SECRET"),
	}
	if tokenSecrets.Access == "" || tokenSecrets.Refresh == "" || tokenSecrets.Reset == "" {
		log.Fatalln("token secrets not set. use ACCESS_TOKEN_SECRET, REFRESH_TOKEN_SECRET and RESET_TOKEN_SECRET")
	}

	postgresPassword := os.Getenv("VOTERS_POSTGRES_PASS")
	if postgresPassword == "" {
		log.Warnln("postgres password not set. use VOTERS_POSTGRES_PASS")
	}

	redisPassword := os.Getenv("VOTERS_REDIS_PASS")
	if cfg.RedisEnabled && redisPassword == "" {
		log.Errorf("redis password not set. use VOTERS_REDIS_PASS")
	}

	smtpUsername := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")
	if cfg.SMTPHost != "" && smtpUsername == "" {
		log.Warnln("smtp username not set, sending without auth. use SMTP_USERNAME and SMTP_PASSWORD")
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			PostgresPassword:        postgresPassword,
			RedisPassword:           redisPassword,
			TokenSecrets:            tokenSecrets,
			SMTPUsername:            smtpUsername,
			SMTPPassword:            smtpPassword,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
