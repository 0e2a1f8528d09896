package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the default config file location.
	configPath string

	// openMailbox builds the mailbox service once configuration is known.
	openMailbox MailboxOpener
)

// MailboxOpener opens a mailbox service for a validated configuration.
type MailboxOpener func(ctx context.Context, cfg *config.Config, log *logger.Logger) (driving.MailboxService, error)

// Services holds configuration for CLI commands.
type Services struct {
	OpenMailbox MailboxOpener
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	openMailbox = s.OpenMailbox
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "ewsctl",
	Short: "Walk folders and export items from Exchange Web Services",
	Long: `ewsctl talks to an Exchange server over EWS. It walks mail folders,
pages through folder listings, hydrates full items in batches and converts
item ids between formats.

Settings come from ~/.ewsctl/config.toml, a .env file and EWS_* variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ewsctl/config.toml)")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}

// loadConfig reads and validates the layered configuration.
// The --verbose flag wins over the log.verbose setting.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withMailbox loads configuration, opens the mailbox and runs fn with it.
func withMailbox(cmd *cobra.Command, fn func(context.Context, *config.Config, driving.MailboxService) error) error {
	if openMailbox == nil {
		return errors.New("mailbox service not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := promptPassword(cmd, cfg); err != nil {
		return err
	}

	log := logger.New(logger.Options{Out: cmd.ErrOrStderr(), Verbose: cfg.Log.Verbose, JSON: cfg.Log.JSON})
	logger.SetDefault(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	mb, err := openMailbox(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := mb.Close(); err != nil {
			log.Debug("close mailbox: %v", err)
		}
	}()
	return fn(ctx, cfg, mb)
}
