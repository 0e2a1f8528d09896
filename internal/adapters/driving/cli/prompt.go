package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// stdinIsTerminal and readPassword are replaced in tests.
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword    = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

// promptPassword asks for the NTLM password when none is configured.
func promptPassword(cmd *cobra.Command, cfg *config.Config) error {
	if domain.AuthMethod(cfg.Auth.Method) != domain.AuthNTLM || cfg.Auth.Password != "" {
		return nil
	}
	if !stdinIsTerminal() {
		return errors.New("no password configured: set EWS_PASSWORD or auth.password")
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", cfg.Credentials().AuthUsername())
	pw, err := readPassword()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	cfg.Auth.Password = string(pw)
	return nil
}
