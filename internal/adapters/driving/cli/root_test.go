package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

func TestSetVersion(t *testing.T) {
	// Given
	originalVersion := version
	defer func() { version = originalVersion }()

	// When
	SetVersion("1.2.3")

	// Then
	assert.Equal(t, "1.2.3", version)
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "ewsctl", rootCmd.Use)
}

func TestRootCmd_Long(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "Exchange server over EWS")
	assert.Contains(t, rootCmd.Long, "EWS_* variables")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()

	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "folders", "should have folders command")
	assert.Contains(t, commandNames, "items", "should have items command")
	assert.Contains(t, commandNames, "convert-id", "should have convert-id command")
	assert.Contains(t, commandNames, "version", "should have version command")
	assert.Contains(t, commandNames, "config", "should have config command")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestExecute_ReturnsNoErrorWithHelp(t *testing.T) {
	oldOut := rootCmd.OutOrStdout()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--help"})
	defer func() {
		rootCmd.SetOut(oldOut)
		rootCmd.SetArgs(nil)
	}()

	// When
	err := Execute()

	// Then
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "ewsctl")
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()
	SetVersion("0.4.0")

	stdout, _, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "ewsctl 0.4.0")
}

func TestSetServices_WithNilServices(t *testing.T) {
	old := openMailbox
	defer func() { openMailbox = old }()
	openMailbox = func(context.Context, *config.Config, *logger.Logger) (driving.MailboxService, error) {
		return nil, nil
	}

	// When
	SetServices(nil)

	// Then
	assert.NotNil(t, openMailbox, "nil services leave the current opener in place")
}

func TestWithMailbox_NotConfigured(t *testing.T) {
	setupTestServices(t, &mockMailbox{}, testConfig)
	openMailbox = nil

	_, _, err := run(t, "folders")

	assert.ErrorContains(t, err, "mailbox service not configured")
}

func TestWithMailbox_InvalidConfig(t *testing.T) {
	env := setupTestServices(t, &mockMailbox{}, "[auth]\nusername = \"jdoe\"\npassword = \"x\"\n")

	_, _, err := run(t, "folders")

	assert.ErrorContains(t, err, "wsdl")
	assert.Zero(t, env.opens)
}

func TestWithMailbox_VerboseFlagWins(t *testing.T) {
	env := setupTestServices(t, &mockMailbox{folders: sampleFolders()}, testConfig)

	_, _, err := run(t, "folders", "--verbose")

	require.NoError(t, err)
	require.NotNil(t, env.cfg)
	assert.True(t, env.cfg.Log.Verbose)
	assert.True(t, env.mailbox.closed)
}
