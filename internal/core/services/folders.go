package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// FolderTree walks folderID and its descendants depth-first, pre-order, and
// returns one row per folder. A folder whose own metadata cannot be fetched
// is skipped together with its subtree; its siblings are still walked.
// The returned error is only set when ctx is done.
func (m *Mailbox) FolderTree(ctx context.Context, folderType, folderID string) (*domain.FolderTable, error) {
	table := domain.NewFolderTable()
	if err := m.addSubfolders(ctx, folderType, folderID, table); err != nil {
		m.log.Warn("ews: folder walk from %s stopped: %v", folderID, err)
	}
	return table, ctx.Err()
}

func (m *Mailbox) addSubfolders(ctx context.Context, folderType, folderID string, table *domain.FolderTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resp, err := m.GetFolder(ctx, folderType, folderID)
	if err != nil {
		return err
	}
	rec, err := m.folderRecord(resp)
	if err != nil {
		return m.observe("FolderTree", map[string]any{"folder_id": folderID}, err)
	}
	table.Set(rec)
	m.log.Debug("ews: folder %q (%s) has %d items, %d subfolders",
		rec.DisplayName, rec.FolderID, rec.ItemCount, rec.SubFolderCount)

	resp, err = m.GetSubfolders(ctx, folderType, folderID)
	if err != nil {
		return err
	}
	children, err := m.nav.Navigate(mustPath(PathChildFolders), resp)
	if errors.Is(err, domain.ErrAbsent) {
		return nil
	}
	if err != nil {
		return m.observe("FolderTree", map[string]any{"folder_id": folderID}, err)
	}

	for i, child := range AsList(children) {
		childID, err := m.nav.NavigateString(mustPath(PathSubFolderID), child)
		if err == nil {
			err = m.addSubfolders(ctx, domain.FolderTypeID, childID, table)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			m.log.Warn("ews: skipping subfolder %d (%q) of %s: %v", i, childID, folderID, err)
		}
	}
	return nil
}

// folderRecord extracts one folder row from a GetFolder response. Only the
// folder id is mandatory; other columns stay empty when absent.
func (m *Mailbox) folderRecord(resp domain.Tree) (domain.FolderRecord, error) {
	id, err := m.nav.NavigateString(mustPath(PathFolderID), resp)
	if err != nil {
		return domain.FolderRecord{}, err
	}
	rec := domain.FolderRecord{FolderID: id}
	rec.ParentFolderID, _ = m.nav.NavigateString(mustPath(PathParentFolderID), resp)
	rec.DisplayName, _ = m.nav.NavigateString(mustPath(PathDisplayName), resp)
	rec.ItemCount, _ = m.nav.NavigateInt(mustPath(PathItemCount), resp)
	rec.SubFolderCount, _ = m.nav.NavigateInt(mustPath(PathChildFolderCount), resp)
	return rec, nil
}
