package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
)

// Error marker prefixes written to the ews_error column.
const (
	errTypePrefix      = "get_type_error: "
	errAssertionPrefix = "get_assertion_error: "
	errResponsePrefix  = "get_response_error: "
)

// GetItems fetches full bodies for every row of items, in consecutive batches
// of MaxItemsPerGetItemQuery ids. Each batch opens its own session. Response
// entries are paired with requested ids by position; a pair whose embedded id
// differs gets an error marker instead of a body. Per-item problems never
// abort a batch. Transport errors abort and are returned with the table as
// filled so far.
func (m *Mailbox) GetItems(ctx context.Context, items *domain.ItemTable) (*domain.ItemTable, error) {
	if items == nil {
		return nil, m.observe("GetItems", nil, fmt.Errorf("%w: item table is nil", domain.ErrInvalidInput))
	}

	ids := items.IDs()
	batchSize := m.cfg.MaxItemsPerGetItemQuery
	for beg := 0; beg < len(ids); beg += batchSize {
		end := min(beg+batchSize, len(ids))
		batch := ids[beg:end]
		m.log.Info("ews: hydrating items %d..%d of %d", beg, end, len(ids))

		resp, err := m.getItemBatch(ctx, batch)
		if err != nil {
			return items, m.observe("GetItems", map[string]any{"batch_begin": beg, "batch_end": end}, err)
		}

		list, err := m.nav.Navigate(mustPath(PathGetItemMessages), resp)
		entries := AsList(list)
		m.log.Debug("ews: received %d items for %d ids", len(entries), len(batch))
		if len(entries) == 0 {
			marker := errResponsePrefix + "empty response"
			if errors.Is(err, domain.ErrNodeType) {
				marker = errTypePrefix + err.Error()
			}
			for _, id := range batch {
				items.SetError(id, marker)
			}
			continue
		}
		if len(entries) != len(batch) {
			m.log.Warn("ews: batch %d..%d returned %d entries", beg, end, len(entries))
		}

		for i := 0; i < min(len(entries), len(batch)); i++ {
			m.hydrateItem(items, batch[i], entries[i])
		}
	}
	return items, nil
}

func (m *Mailbox) getItemBatch(ctx context.Context, ids []string) (domain.Tree, error) {
	m.log.Debug("ews: session starting")
	session, err := m.factory.Open(ctx, driven.SessionOptions{})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	resp, err := session.GetItem(ctx, domain.GetItemRequest{
		ItemShape: itemShapeAll,
		ItemIDs:   ids,
	})
	if closeErr := session.Close(); closeErr != nil {
		m.log.Warn("ews: close session: %v", closeErr)
	}
	m.log.Debug("ews: session ended")
	return resp, err
}

// hydrateItem writes the body or an error marker for one response entry.
func (m *Mailbox) hydrateItem(items *domain.ItemTable, id string, entry domain.Tree) {
	full, err := m.nav.Navigate(mustPath(PathFullItem), entry)
	switch {
	case err == nil:
		gotID, err := m.nav.NavigateString(mustPath(PathFullItemID), entry)
		if errors.Is(err, domain.ErrNodeType) {
			m.log.Warn("ews: item %s: %v", id, err)
			items.SetError(id, errTypePrefix+err.Error())
			return
		}
		if gotID != id {
			mismatch := fmt.Errorf("%w: requested %s, received %s", domain.ErrIDMismatch, id, gotID)
			m.log.Warn("ews: %v", mismatch)
			items.SetError(id, errAssertionPrefix+mismatch.Error())
			return
		}
		items.SetFullItem(id, full)
	case errors.Is(err, domain.ErrNodeType):
		m.log.Warn("ews: item %s: %v", id, err)
		items.SetError(id, errTypePrefix+err.Error())
	default:
		class, _ := m.nav.NavigateString(mustPath(PathResponseClass), entry)
		if class == "Error" {
			code, _ := m.nav.NavigateString(mustPath(PathResponseCode), entry)
			items.SetError(id, errResponsePrefix+code)
		}
	}
}
