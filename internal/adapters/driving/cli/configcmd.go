package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ewsctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ewsctl config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with defaults",
	Long: `Write a config file holding the defaults and the given settings.

The password is never written; supply it with EWS_PASSWORD or at the prompt.

Examples:
  ewsctl config init --wsdl https://mail.example.com/EWS/Exchange.asmx --username jdoe --domain CORP
  ewsctl config init --wsdl ./Services.wsdl --username jdoe --mailbox jdoe@example.com --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var (
	initWSDL     string
	initUsername string
	initDomain   string
	initMailbox  string
	initForce    bool
)

func init() {
	configInitCmd.Flags().StringVar(&initWSDL, "wsdl", "", "EWS endpoint URL or WSDL location")
	configInitCmd.Flags().StringVar(&initUsername, "username", "", "NTLM username")
	configInitCmd.Flags().StringVar(&initDomain, "domain", "", "NTLM domain")
	configInitCmd.Flags().StringVar(&initMailbox, "mailbox", "", "default mailbox for convert-id")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.WSDL = initWSDL
	cfg.Mailbox = initMailbox
	cfg.Auth.Username = initUsername
	cfg.Auth.Domain = initDomain
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return err
}
