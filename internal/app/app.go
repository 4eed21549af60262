package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"event-ingress-service/internal/config"
	"event-ingress-service/internal/events"
	"event-ingress-service/internal/models"
	"event-ingress-service/internal/pipe"
	"event-ingress-service/internal/schema"
	"event-ingress-service/internal/service/recent"
	"event-ingress-service/internal/service/sequence"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Registry  *schema.Registry
	Pipe      *pipe.Pipe
	Publisher *events.Publisher
	Sequence  *sequence.Generator
	Recent    *recent.Buffer
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:      cfg,
		Registry: schema.NewRegistry(),
		Sequence: sequence.New(),
		Recent:   recent.New(recent.DefaultCapacity),
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("component", "application").
		Str("method", "New").
		Logger()

	if err := models.Register(a.Registry); err != nil {
		return nil, fmt.Errorf("failed to register models: %w", err)
	}
	a.Pipe = pipe.New(a.Registry, cfg.Validation.SensitiveFields)

	a.Publisher = events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicAccepted: cfg.Kafka.TopicAccepted,
		TopicRejected: cfg.Kafka.TopicRejected,
		Principal:     cfg.Kafka.Principal,
	})

	appLogger.Info().
		Strs("models", a.Registry.Names()).
		Msg("Event ingress application created")
	return a, nil
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logLevel := zerolog.InfoLevel // Default
	if envLevel := a.Cfg.Observability.LogLevel; envLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(strings.ToLower(envLevel)); err == nil {
			logLevel = parsedLevel
		}
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	if os.Getenv("ENV") == "dev" {
		a.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("service", "event-ingress-service").
			Str("component", "application").
			Logger()
	} else {
		a.Logger = zerolog.New(os.Stdout).With().
			Timestamp().
			Str("service", "event-ingress-service").
			Str("component", "application").
			Logger()
	}

	a.Logger.Info().
		Str("logLevel", logLevel.String()).
		Str("environment", os.Getenv("ENV")).
		Msg("Logger setup completed")
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Event ingress service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			shutdownLogger.Error().Err(err).Msg("Error closing publisher")
		}
	}

	shutdownLogger.Info().Msg("Event ingress service shutting down")
}
