package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Session is one authenticated SOAP session bound to an EWS endpoint.
// Each method issues exactly one round trip and returns the decoded response tree.
// A Session is not safe for concurrent use.
type Session interface {
	GetFolder(ctx context.Context, req domain.GetFolderRequest) (domain.Tree, error)
	FindFolder(ctx context.Context, req domain.FindFolderRequest) (domain.Tree, error)
	FindItem(ctx context.Context, req domain.FindItemRequest) (domain.Tree, error)
	GetItem(ctx context.Context, req domain.GetItemRequest) (domain.Tree, error)
	ConvertID(ctx context.Context, req domain.ConvertIDRequest) (domain.Tree, error)

	// Close releases the session's transport. Calls after Close fail.
	Close() error
}

// SessionOptions configures a session at open time.
type SessionOptions struct {
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
}

// SessionFactory opens authenticated sessions.
type SessionFactory interface {
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}
