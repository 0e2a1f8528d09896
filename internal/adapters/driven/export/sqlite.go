package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Store persists folder and item tables in an SQLite file.
// Rows are keyed by id; saving a row again replaces it.
type Store struct {
	conn *sql.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS folders (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		folder_id TEXT NOT NULL UNIQUE,
		parent_folder_id TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		item_count INTEGER NOT NULL DEFAULT 0,
		sub_folder_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL UNIQUE,
		date_time_received TEXT NOT NULL DEFAULT '',
		full_item TEXT,
		ews_error TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveFolders upserts every row of t in one transaction.
func (s *Store) SaveFolders(ctx context.Context, t *domain.FolderTable) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO folders (folder_id, parent_folder_id, display_name, item_count, sub_folder_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(folder_id) DO UPDATE SET
				parent_folder_id = excluded.parent_folder_id,
				display_name = excluded.display_name,
				item_count = excluded.item_count,
				sub_folder_count = excluded.sub_folder_count`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range rows(t) {
			if _, err := stmt.ExecContext(ctx, r.FolderID, r.ParentFolderID, r.DisplayName, r.ItemCount, r.SubFolderCount); err != nil {
				return fmt.Errorf("folder %s: %w", r.FolderID, err)
			}
		}
		return nil
	})
}

// SaveItems upserts every row of t in one transaction.
func (s *Store) SaveItems(ctx context.Context, t *domain.ItemTable) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO items (item_id, date_time_received, full_item, ews_error)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				date_time_received = excluded.date_time_received,
				full_item = excluded.full_item,
				ews_error = excluded.ews_error`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range itemRows(t) {
			var full sql.NullString
			if r.FullItem != nil {
				data, err := json.Marshal(r.FullItem)
				if err != nil {
					return fmt.Errorf("item %s: %w", r.ItemID, err)
				}
				full = sql.NullString{String: string(data), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, r.ItemID, r.DateTimeReceived, full, r.EWSError); err != nil {
				return fmt.Errorf("item %s: %w", r.ItemID, err)
			}
		}
		return nil
	})
}

// Folders reads the folder table back in first-insertion order.
func (s *Store) Folders(ctx context.Context) (*domain.FolderTable, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT folder_id, parent_folder_id, display_name, item_count, sub_folder_count
		FROM folders ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := domain.NewFolderTable()
	for rows.Next() {
		var r domain.FolderRecord
		if err := rows.Scan(&r.FolderID, &r.ParentFolderID, &r.DisplayName, &r.ItemCount, &r.SubFolderCount); err != nil {
			return nil, err
		}
		t.Set(r)
	}
	return t, rows.Err()
}

// Items reads the item table back in first-insertion order.
func (s *Store) Items(ctx context.Context) (*domain.ItemTable, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT item_id, date_time_received, full_item, ews_error
		FROM items ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := domain.NewItemTable()
	for rows.Next() {
		var (
			id, received, ewsError string
			full                   sql.NullString
		)
		if err := rows.Scan(&id, &received, &full, &ewsError); err != nil {
			return nil, err
		}
		t.Add(id, received)
		if full.Valid {
			var item map[string]any
			if err := json.Unmarshal([]byte(full.String), &item); err != nil {
				return nil, fmt.Errorf("item %s: %w", id, err)
			}
			t.SetFullItem(id, item)
		}
		if ewsError != "" {
			t.SetError(id, ewsError)
		}
	}
	return t, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
