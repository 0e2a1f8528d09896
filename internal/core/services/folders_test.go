package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// folderBackend serves a fixed folder hierarchy. Ids in failing return a
// transport error on GetFolder.
func folderBackend(folders map[string]folderFixture, failing ...string) *fakeBackend {
	fail := make(map[string]bool, len(failing))
	for _, id := range failing {
		fail[id] = true
	}
	return &fakeBackend{
		getFolder: func(req domain.GetFolderRequest) (domain.Tree, error) {
			if fail[req.FolderID] {
				return nil, errors.New("connection reset by peer")
			}
			f, ok := folders[req.FolderID]
			if !ok {
				return folderNotFoundResponse(), nil
			}
			return getFolderResponse(req.FolderID, f), nil
		},
		findFolder: func(req domain.FindFolderRequest) (domain.Tree, error) {
			return findFolderResponse(folders[req.FolderID].children), nil
		},
	}
}

func threeLevelTree() map[string]folderFixture {
	return map[string]folderFixture{
		"root": {parent: "top", name: "Top of Information Store", total: 0, children: []string{"c1", "c2"}},
		"c1":   {parent: "root", name: "Inbox", total: 12, children: []string{"g1"}},
		"g1":   {parent: "c1", name: "Receipts", total: 3},
		"c2":   {parent: "root", name: "Archive", total: 40},
	}
}

func newTestMailbox(t *testing.T, backend *fakeBackend, cfg MailboxConfig) (*Mailbox, *fakeFactory) {
	t.Helper()
	factory := newFakeFactory(backend)
	m, err := NewMailbox(context.Background(), factory, cfg, nil)
	require.NoError(t, err)
	return m, factory
}

func TestFolderTree_WalksAllLevels(t *testing.T) {
	// Given
	m, _ := newTestMailbox(t, folderBackend(threeLevelTree()), MailboxConfig{})

	// When
	table, err := m.FolderTree(context.Background(), domain.FolderTypeID, "root")

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "c1", "g1", "c2"}, table.IDs())

	c1, ok := table.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "root", c1.ParentFolderID)
	assert.Equal(t, "Inbox", c1.DisplayName)
	assert.Equal(t, 12, c1.ItemCount)
	assert.Equal(t, 1, c1.SubFolderCount)

	g1, ok := table.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "c1", g1.ParentFolderID)
	assert.Equal(t, 0, g1.SubFolderCount)

	c2, ok := table.Get("c2")
	require.True(t, ok)
	assert.Equal(t, "root", c2.ParentFolderID)
}

func TestFolderTree_ChildFailureDoesNotStopSiblings(t *testing.T) {
	m, _ := newTestMailbox(t, folderBackend(threeLevelTree(), "c1"), MailboxConfig{})

	table, err := m.FolderTree(context.Background(), domain.FolderTypeID, "root")

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "c2"}, table.IDs())
}

func TestFolderTree_MissingChildIsSkipped(t *testing.T) {
	folders := threeLevelTree()
	delete(folders, "g1")
	m, _ := newTestMailbox(t, folderBackend(folders), MailboxConfig{})

	table, err := m.FolderTree(context.Background(), domain.FolderTypeID, "root")

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "c1", "c2"}, table.IDs())
}

func TestFolderTree_RootFailureYieldsEmptyTable(t *testing.T) {
	m, _ := newTestMailbox(t, folderBackend(threeLevelTree(), "root"), MailboxConfig{})

	table, err := m.FolderTree(context.Background(), domain.FolderTypeID, "root")

	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestFolderTree_DistinguishedRoot(t *testing.T) {
	var rootTypes []string
	backend := folderBackend(map[string]folderFixture{
		"msgfolderroot": {parent: "top", name: "Root", children: []string{"inbox-id"}},
		"inbox-id":      {parent: "msgfolderroot", name: "Inbox"},
	})
	getFolder := backend.getFolder
	backend.getFolder = func(req domain.GetFolderRequest) (domain.Tree, error) {
		rootTypes = append(rootTypes, req.FolderType)
		return getFolder(req)
	}
	m, _ := newTestMailbox(t, backend, MailboxConfig{})

	table, err := m.FolderTree(context.Background(), domain.FolderTypeDistinguished, "msgfolderroot")

	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{domain.FolderTypeDistinguished, domain.FolderTypeID}, rootTypes)
}

func TestFolderTree_SingleChildDecodedWithoutList(t *testing.T) {
	// findFolderResponse emits a lone child as a node, not a sequence.
	m, _ := newTestMailbox(t, folderBackend(map[string]folderFixture{
		"root": {name: "Root", children: []string{"only"}},
		"only": {parent: "root", name: "Only"},
	}), MailboxConfig{})

	table, err := m.FolderTree(context.Background(), domain.FolderTypeID, "root")

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "only"}, table.IDs())
}

func TestFolderTree_CancelledContext(t *testing.T) {
	m, _ := newTestMailbox(t, folderBackend(threeLevelTree()), MailboxConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table, err := m.FolderTree(ctx, domain.FolderTypeID, "root")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, table.Len())
}

func TestGetFolder_InvalidInput(t *testing.T) {
	m, factory := newTestMailbox(t, folderBackend(threeLevelTree()), MailboxConfig{})

	_, err := m.GetFolder(context.Background(), "SearchFolderId", "root")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.GetSubfolders(context.Background(), domain.FolderTypeID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, factory.sessions[0].calls)
}

func TestGetSubfolders_RequestShape(t *testing.T) {
	var got domain.FindFolderRequest
	backend := &fakeBackend{findFolder: func(req domain.FindFolderRequest) (domain.Tree, error) {
		got = req
		return findFolderResponse(nil), nil
	}}
	m, _ := newTestMailbox(t, backend, MailboxConfig{})

	_, err := m.GetSubfolders(context.Background(), domain.FolderTypeDistinguished, "inbox")

	require.NoError(t, err)
	assert.Equal(t, "Shallow", got.Traversal)
	assert.Equal(t, "Default", got.FolderShape)
	assert.Equal(t, "inbox", got.FolderID)
}
