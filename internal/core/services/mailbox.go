package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

// Ensure Mailbox implements the interface.
var _ driving.MailboxService = (*Mailbox)(nil)

// Fixed request options.
const (
	folderShapeDefault = "Default"
	traversalShallow   = "Shallow"
	itemShapeAll       = "AllProperties"
)

// MailboxConfig holds the paging limits of a Mailbox.
type MailboxConfig struct {
	// Timeout bounds requests on the long-lived session.
	Timeout time.Duration
	// BasePoint is the IndexedPageItemView base point ("Beginning" or "End").
	BasePoint string
	// MaxFolderItemsPerFindItemQuery is the FindItem page size.
	MaxFolderItemsPerFindItemQuery int
	// MaxItemsPerGetItemQuery is the GetItem batch size.
	MaxItemsPerGetItemQuery int
}

// DefaultMailboxConfig returns the default limits.
func DefaultMailboxConfig() MailboxConfig {
	return MailboxConfig{
		Timeout:                        120 * time.Second,
		BasePoint:                      "Beginning",
		MaxFolderItemsPerFindItemQuery: 1000,
		MaxItemsPerGetItemQuery:        1000,
	}
}

// Mailbox runs EWS folder, item and id operations over sessions from a factory.
// Folder operations use one long-lived session; item listing pages and
// hydration batches each open and close their own. Not safe for concurrent use.
type Mailbox struct {
	factory driven.SessionFactory
	session driven.Session
	cfg     MailboxConfig
	nav     *Navigator
	log     *logger.Logger
}

// NewMailbox opens the long-lived session and returns a Mailbox.
func NewMailbox(
	ctx context.Context, factory driven.SessionFactory, cfg MailboxConfig, log *logger.Logger,
) (*Mailbox, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: session factory is nil", domain.ErrInvalidInput)
	}
	if log == nil {
		log = logger.Nop()
	}
	defaults := DefaultMailboxConfig()
	if cfg.BasePoint == "" {
		cfg.BasePoint = defaults.BasePoint
	}
	if cfg.MaxFolderItemsPerFindItemQuery <= 0 {
		cfg.MaxFolderItemsPerFindItemQuery = defaults.MaxFolderItemsPerFindItemQuery
	}
	if cfg.MaxItemsPerGetItemQuery <= 0 {
		cfg.MaxItemsPerGetItemQuery = defaults.MaxItemsPerGetItemQuery
	}

	session, err := factory.Open(ctx, driven.SessionOptions{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &Mailbox{
		factory: factory,
		session: session,
		cfg:     cfg,
		nav:     NewNavigator(log),
		log:     log,
	}, nil
}

// Navigator returns the navigator used by the mailbox.
func (m *Mailbox) Navigator() *Navigator {
	return m.nav
}

// GetFolder returns the raw GetFolder response for one folder.
func (m *Mailbox) GetFolder(ctx context.Context, folderType, folderID string) (domain.Tree, error) {
	args := map[string]any{"folder_type": folderType, "folder_id": folderID}
	if err := validateFolder(folderType, folderID); err != nil {
		return nil, m.observe("GetFolder", args, err)
	}

	resp, err := m.session.GetFolder(ctx, domain.GetFolderRequest{
		FolderType:  folderType,
		FolderID:    folderID,
		FolderShape: folderShapeDefault,
	})
	if err != nil {
		return nil, m.observe("GetFolder", args, err)
	}
	return resp, nil
}

// GetSubfolders returns the raw shallow FindFolder response for one folder.
func (m *Mailbox) GetSubfolders(ctx context.Context, folderType, folderID string) (domain.Tree, error) {
	args := map[string]any{"folder_type": folderType, "folder_id": folderID}
	if err := validateFolder(folderType, folderID); err != nil {
		return nil, m.observe("GetSubfolders", args, err)
	}

	resp, err := m.session.FindFolder(ctx, domain.FindFolderRequest{
		FolderType:  folderType,
		FolderID:    folderID,
		FolderShape: folderShapeDefault,
		Traversal:   traversalShallow,
	})
	if err != nil {
		return nil, m.observe("GetSubfolders", args, err)
	}
	return resp, nil
}

// FindItems issues one FindItem page request on the long-lived session.
func (m *Mailbox) FindItems(ctx context.Context, params domain.FindItemsParams) (domain.Tree, error) {
	return m.findItems(ctx, m.session, params)
}

func (m *Mailbox) findItems(
	ctx context.Context, session driven.Session, params domain.FindItemsParams,
) (domain.Tree, error) {
	args := map[string]any{
		"folder_type": params.FolderType,
		"folder_id":   params.FolderID,
		"offset":      params.Offset,
	}
	if err := validateFolder(params.FolderType, params.FolderID); err != nil {
		return nil, m.observe("FindItems", args, err)
	}

	req := domain.FindItemRequest{
		FolderType:  params.FolderType,
		FolderID:    params.FolderID,
		ItemShape:   params.ItemShape,
		Traversal:   params.Traversal,
		MaxEntries:  m.cfg.MaxFolderItemsPerFindItemQuery,
		Offset:      params.Offset,
		BasePoint:   m.cfg.BasePoint,
		Restriction: params.Restriction,
		SortOrder:   params.SortOrder,
		QueryString: params.QueryString,
	}
	if req.ItemShape == "" {
		req.ItemShape = itemShapeAll
	}
	if req.Traversal == "" {
		req.Traversal = traversalShallow
	}

	resp, err := session.FindItem(ctx, req)
	if err != nil {
		return nil, m.observe("FindItems", args, err)
	}
	return resp, nil
}

// ConvertID returns the raw ConvertId response for one alternate id.
// The mailbox owning the id is required.
func (m *Mailbox) ConvertID(ctx context.Context, params domain.ConvertIDParams) (domain.Tree, error) {
	args := map[string]any{
		"id":                 params.ID,
		"source_format":      params.SourceFormat,
		"destination_format": params.DestinationFormat,
		"mailbox":            params.Mailbox,
	}
	switch {
	case params.ID == "":
		return nil, m.observe("ConvertID", args, fmt.Errorf("%w: id is required", domain.ErrInvalidInput))
	case params.Mailbox == "":
		return nil, m.observe("ConvertID", args, fmt.Errorf("%w: mailbox is required", domain.ErrInvalidInput))
	case params.SourceFormat == "" || params.DestinationFormat == "":
		return nil, m.observe("ConvertID", args, fmt.Errorf("%w: source and destination formats are required", domain.ErrInvalidInput))
	}

	resp, err := m.session.ConvertID(ctx, domain.ConvertIDRequest{
		ID:                params.ID,
		Mailbox:           params.Mailbox,
		SourceFormat:      params.SourceFormat,
		DestinationFormat: params.DestinationFormat,
	})
	if err != nil {
		return nil, m.observe("ConvertID", args, err)
	}
	return resp, nil
}

// ConvertedID converts an id and returns the converted value.
func (m *Mailbox) ConvertedID(ctx context.Context, params domain.ConvertIDParams) (string, error) {
	resp, err := m.ConvertID(ctx, params)
	if err != nil {
		return "", err
	}
	id, err := m.nav.NavigateString(mustPath(PathConvertedID), resp)
	if err != nil {
		return "", m.observe("ConvertedID", map[string]any{"id": params.ID}, err)
	}
	return id, nil
}

// Close releases the long-lived session.
func (m *Mailbox) Close() error {
	return m.session.Close()
}

func validateFolder(folderType, folderID string) error {
	if folderType != domain.FolderTypeID && folderType != domain.FolderTypeDistinguished {
		return fmt.Errorf("%w: unknown folder type %q", domain.ErrInvalidInput, folderType)
	}
	if folderID == "" {
		return fmt.Errorf("%w: folder id is required", domain.ErrInvalidInput)
	}
	return nil
}
