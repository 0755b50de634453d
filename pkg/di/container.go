package di

import (
	"context"
	"fmt"

	"sentimentai/voice-server/internal/contact"
	"sentimentai/voice-server/internal/relay"
	"sentimentai/voice-server/internal/upstream"
	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/health"
	"sentimentai/voice-server/pkg/logger"
)

// Container holds all the dependencies for the application
type Container struct {
	Config         *config.Config
	Logger         *logger.Logger
	Dialer         upstream.Dialer
	RelayServer    *relay.Server
	Mailer         contact.Mailer
	ContactHandler *contact.Handler
	HealthChecker  *health.Checker
}

// Options override individual dependencies, mainly so tests can swap
// in fakes for the pieces that talk to the outside world.
type Options struct {
	LoggerConfig *logger.Config
	Dialer       upstream.Dialer
	Mailer       contact.Mailer
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, opts *Options) (*Container, error) {
	if opts == nil {
		opts = &Options{}
	}

	loggerCfg := logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	}
	if opts.LoggerConfig != nil {
		loggerCfg = *opts.LoggerConfig
	}
	log := logger.New(loggerCfg)
	logger.SetGlobal(log)

	dialer := opts.Dialer
	if dialer == nil {
		if cfg.Upstream.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		dialer = upstream.NewDialer(cfg, log)
	}

	mailer := opts.Mailer
	if mailer == nil {
		sesMailer, err := contact.NewSESMailer(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES mailer: %w", err)
		}
		mailer = sesMailer
	}

	relayServer := relay.NewServer(cfg, log, dialer)
	contactHandler := contact.NewHandler(mailer, cfg, log)

	checker := health.NewChecker(log)
	checker.RegisterCheck("upstream_config", func() (health.Status, string, error) {
		if cfg.Upstream.APIKey == "" {
			return health.StatusDown, "Realtime API key not configured", fmt.Errorf("missing API key")
		}
		return health.StatusUp, "Realtime API configured", nil
	})
	checker.RegisterCheck("mailer_config", func() (health.Status, string, error) {
		if cfg.Email.From == "" || cfg.Email.To == "" {
			return health.StatusDegraded, "Contact email addresses not configured", nil
		}
		return health.StatusUp, "SES sender configured", nil
	})

	return &Container{
		Config:         cfg,
		Logger:         log,
		Dialer:         dialer,
		RelayServer:    relayServer,
		Mailer:         mailer,
		ContactHandler: contactHandler,
		HealthChecker:  checker,
	}, nil
}
