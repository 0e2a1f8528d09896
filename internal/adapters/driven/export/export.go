// Package export writes folder and item tables to CSV, JSON or SQLite.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable  Format = "table"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatSQLite}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, s)
}

// WriteFoldersCSV writes one header row and one row per folder.
// The first column is the folder id.
func WriteFoldersCSV(w io.Writer, t *domain.FolderTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"folder_id"}, domain.FolderColumns...)); err != nil {
		return err
	}
	for _, r := range rows(t) {
		rec := []string{
			r.FolderID,
			r.ParentFolderID,
			r.DisplayName,
			strconv.Itoa(r.ItemCount),
			strconv.Itoa(r.SubFolderCount),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteItemsCSV writes one row per item with full_item as compact JSON.
func WriteItemsCSV(w io.Writer, t *domain.ItemTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"item_id"}, domain.ItemColumns...)); err != nil {
		return err
	}
	for _, r := range itemRows(t) {
		full, err := encodeFullItem(r.FullItem)
		if err != nil {
			return fmt.Errorf("item %s: %w", r.ItemID, err)
		}
		if err := cw.Write([]string{r.ItemID, r.DateTimeReceived, full, r.EWSError}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFoldersJSON writes the folder rows as an indented JSON array.
func WriteFoldersJSON(w io.Writer, t *domain.FolderTable) error {
	return writeJSON(w, rows(t))
}

// WriteItemsJSON writes the item rows as an indented JSON array.
func WriteItemsJSON(w io.Writer, t *domain.ItemTable) error {
	return writeJSON(w, itemRows(t))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// encodeFullItem renders a hydrated body, or "" when there is none.
func encodeFullItem(item domain.Tree) (string, error) {
	if item == nil {
		return "", nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func rows(t *domain.FolderTable) []domain.FolderRecord {
	if t == nil {
		return []domain.FolderRecord{}
	}
	return t.Rows()
}

func itemRows(t *domain.ItemTable) []domain.ItemRecord {
	if t == nil {
		return []domain.ItemRecord{}
	}
	return t.Rows()
}
