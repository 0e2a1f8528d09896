package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ewsctl/internal/adapters/driving/cli"
	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/connectors"
	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft"
	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft/ews"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
	"github.com/custodia-labs/ewsctl/internal/core/services"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)
	cli.SetServices(&cli.Services{OpenMailbox: openMailbox})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		return 1
	}
	return 0
}

// openMailbox wires the session factory and the mailbox service for cfg.
func openMailbox(ctx context.Context, cfg *config.Config, log *logger.Logger) (driving.MailboxService, error) {
	factory := connectors.NewFactory(connectors.Config{
		Options: ews.Options{
			Endpoint:           cfg.WSDL,
			ServerVersion:      cfg.ServerVersion,
			Impersonate:        cfg.Impersonate,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			UserAgent:          "ewsctl/" + version,
		},
		Auth:        domain.AuthMethod(cfg.Auth.Method),
		Credentials: cfg.Credentials(),
		OAuth:       cfg.OAuth(),
		RateLimit: microsoft.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
		},
	}, log)

	mb, err := services.NewMailbox(ctx, factory, services.MailboxConfig{
		Timeout:                        cfg.Timeout.Std(),
		BasePoint:                      cfg.BasePoint,
		MaxFolderItemsPerFindItemQuery: cfg.MaxFolderItemsPerFindItemQuery,
		MaxItemsPerGetItemQuery:        cfg.MaxItemsPerGetItemQuery,
	}, log)
	if err != nil {
		return nil, err
	}
	return mb, nil
}
