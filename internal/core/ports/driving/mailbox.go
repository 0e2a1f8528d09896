package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// MailboxService exposes the EWS mailbox operations to driving adapters.
type MailboxService interface {
	// GetFolder returns the raw GetFolder response for one folder.
	GetFolder(ctx context.Context, folderType, folderID string) (domain.Tree, error)

	// GetSubfolders returns the raw shallow FindFolder response for one folder.
	GetSubfolders(ctx context.Context, folderType, folderID string) (domain.Tree, error)

	// FolderTree walks a folder and all its descendants depth-first.
	FolderTree(ctx context.Context, folderType, folderID string) (*domain.FolderTable, error)

	// AllItemsInFolder lazily yields one item table per listing page.
	// Ranging over the sequence again re-issues every request.
	AllItemsInFolder(ctx context.Context, folderType, folderID, query string) iter.Seq2[*domain.ItemTable, error]

	// GetItems fills full_item or ews_error for every row of items.
	GetItems(ctx context.Context, items *domain.ItemTable) (*domain.ItemTable, error)

	// ConvertedID converts an id and returns the converted value.
	ConvertedID(ctx context.Context, params domain.ConvertIDParams) (string, error)

	// Close releases the long-lived session.
	Close() error
}
