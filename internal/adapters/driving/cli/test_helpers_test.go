package cli

import (
	"bytes"
	"context"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

// mockMailbox implements driving.MailboxService for testing.
type mockMailbox struct {
	folders   *domain.FolderTable
	pages     []*domain.ItemTable
	pageErr   error
	hydrateFn func(*domain.ItemTable) (*domain.ItemTable, error)
	converted string
	err       error

	folderCalls  [][2]string
	itemQueries  []string
	convertCalls []domain.ConvertIDParams
	hydrated     bool
	closed       bool
}

func (m *mockMailbox) GetFolder(_ context.Context, folderType, folderID string) (domain.Tree, error) {
	m.folderCalls = append(m.folderCalls, [2]string{folderType, folderID})
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"Folder": map[string]any{"DisplayName": "Inbox"}}, nil
}

func (m *mockMailbox) GetSubfolders(_ context.Context, folderType, folderID string) (domain.Tree, error) {
	m.folderCalls = append(m.folderCalls, [2]string{folderType, folderID})
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"Folders": map[string]any{"Folder": []any{"a", "b"}}}, nil
}

func (m *mockMailbox) FolderTree(_ context.Context, folderType, folderID string) (*domain.FolderTable, error) {
	m.folderCalls = append(m.folderCalls, [2]string{folderType, folderID})
	if m.err != nil {
		return nil, m.err
	}
	return m.folders, nil
}

func (m *mockMailbox) AllItemsInFolder(_ context.Context, _, _, query string) iter.Seq2[*domain.ItemTable, error] {
	m.itemQueries = append(m.itemQueries, query)
	return func(yield func(*domain.ItemTable, error) bool) {
		for _, p := range m.pages {
			if !yield(p, nil) {
				return
			}
		}
		if m.pageErr != nil {
			yield(nil, m.pageErr)
		}
	}
}

func (m *mockMailbox) GetItems(_ context.Context, items *domain.ItemTable) (*domain.ItemTable, error) {
	m.hydrated = true
	if m.hydrateFn != nil {
		return m.hydrateFn(items)
	}
	return items, nil
}

func (m *mockMailbox) ConvertedID(_ context.Context, params domain.ConvertIDParams) (string, error) {
	m.convertCalls = append(m.convertCalls, params)
	if m.err != nil {
		return "", m.err
	}
	return m.converted, nil
}

func (m *mockMailbox) Close() error {
	m.closed = true
	return nil
}

// testEnv holds the state of one CLI invocation under test.
type testEnv struct {
	mailbox *mockMailbox
	cfg     *config.Config
	opens   int
	dir     string
}

const testConfig = `
wsdl = "https://mail.example.com/EWS/Exchange.asmx"
mailbox = "jdoe@example.com"

[auth]
username = "jdoe"
password = "secret"
`

// setupTestServices injects mb, writes a config file and resets flag state.
func setupTestServices(t *testing.T, mb *mockMailbox, cfgText string) *testEnv {
	t.Helper()
	env := &testEnv{mailbox: mb, dir: t.TempDir()}
	t.Chdir(env.dir)

	path := filepath.Join(env.dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfgText), 0o600))

	oldOpen := openMailbox
	oldDefault := logger.Default()
	openMailbox = func(_ context.Context, cfg *config.Config, _ *logger.Logger) (driving.MailboxService, error) {
		env.opens++
		env.cfg = cfg
		return mb, nil
	}
	t.Cleanup(func() {
		openMailbox = oldOpen
		logger.SetDefault(oldDefault)
		resetFlags()
	})

	resetFlags()
	configPath = path
	return env
}

func resetFlags() {
	verbose = false
	configPath = ""
	foldersByID = false
	foldersOutput = outputFlags{format: "table"}
	itemsByID = false
	itemsQuery = ""
	itemsHydrate = false
	itemsOutput = outputFlags{format: "table"}
	convertFrom = "EwsId"
	convertTo = "EntryId"
	convertMailbox = ""
	initWSDL, initUsername, initDomain, initMailbox = "", "", "", ""
	initForce = false
}

// run executes the root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func sampleFolders() *domain.FolderTable {
	t := domain.NewFolderTable()
	t.Set(domain.FolderRecord{FolderID: "root", DisplayName: "Top of Information Store", SubFolderCount: 1})
	t.Set(domain.FolderRecord{FolderID: "inbox", ParentFolderID: "root", DisplayName: "Inbox", ItemCount: 2})
	return t
}

func page(ids ...string) *domain.ItemTable {
	t := domain.NewItemTable()
	for _, id := range ids {
		t.Add(id, "2024-01-15T10:30:00Z")
	}
	return t
}
