package services

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
)

// AllItemsInFolder yields one item table per FindItem page of a folder.
//
// The item count is read first; an empty folder, or one whose count cannot
// be read, yields nothing. Each page opens its own session. Items without a
// message id (calendar items, meeting requests) are skipped. A transport
// error is yielded once and ends the sequence.
//
// The sequence keeps no cursor: ranging over it again starts from offset 0
// and re-issues every request.
func (m *Mailbox) AllItemsInFolder(
	ctx context.Context, folderType, folderID, query string,
) iter.Seq2[*domain.ItemTable, error] {
	return func(yield func(*domain.ItemTable, error) bool) {
		count, err := m.folderItemCount(ctx, folderType, folderID)
		if err != nil {
			if IsAbsent(err) {
				m.log.Info("ews: folder %s has no readable item count, nothing to list", folderID)
				return
			}
			yield(nil, err)
			return
		}
		m.log.Info("ews: folder %s item count: %d", folderID, count)
		if count == 0 {
			return
		}

		pageSize := m.cfg.MaxFolderItemsPerFindItemQuery
		for offset := 0; offset < count; offset += pageSize {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			m.log.Debug("ews: listing %s from offset %d", folderID, offset)

			page, err := m.itemPage(ctx, domain.FindItemsParams{
				FolderType:  folderType,
				FolderID:    folderID,
				Offset:      offset,
				QueryString: query,
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

func (m *Mailbox) folderItemCount(ctx context.Context, folderType, folderID string) (int, error) {
	resp, err := m.GetFolder(ctx, folderType, folderID)
	if err != nil {
		return 0, err
	}
	count, err := m.nav.NavigateInt(mustPath(PathItemCount), resp)
	if err != nil {
		return 0, m.observe("AllItemsInFolder", map[string]any{"folder_id": folderID}, err)
	}
	return count, nil
}

// itemPage fetches one FindItem page on a short-lived session.
func (m *Mailbox) itemPage(ctx context.Context, params domain.FindItemsParams) (*domain.ItemTable, error) {
	session, err := m.factory.Open(ctx, driven.SessionOptions{})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	resp, err := m.findItems(ctx, session, params)
	if closeErr := session.Close(); closeErr != nil {
		m.log.Warn("ews: close session: %v", closeErr)
	}
	if err != nil && !IsAbsent(err) {
		return nil, err
	}

	page := domain.NewItemTable()
	items, err := m.nav.Navigate(mustPath(PathFindItems), resp)
	if err != nil {
		if !errors.Is(err, domain.ErrAbsent) {
			m.log.Warn("ews: unreadable item list at offset %d: %v", params.Offset, err)
		}
		return page, nil
	}

	for _, item := range AsList(items) {
		id, err := m.nav.NavigateString(mustPath(PathItemID), item)
		if err != nil {
			continue
		}
		received, _ := m.nav.NavigateString(mustPath(PathDateTimeReceived), item)
		page.Add(id, received)
	}
	return page, nil
}
