package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ewsctl/internal/adapters/driven/export"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Output flags shared by the folders and items commands.
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", string(export.FormatTable), "output format: table, csv, json or sqlite")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (required for sqlite, stdout otherwise)")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("9"))
)

// writeFolders renders a folder table in the selected format.
func (o *outputFlags) writeFolders(ctx context.Context, cmd *cobra.Command, t *domain.FolderTable) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if format == export.FormatSQLite {
		return o.saveSQLite(func(s *export.Store) error { return s.SaveFolders(ctx, t) })
	}
	return o.withWriter(cmd, func(w io.Writer) error {
		switch format {
		case export.FormatCSV:
			return export.WriteFoldersCSV(w, t)
		case export.FormatJSON:
			return export.WriteFoldersJSON(w, t)
		default:
			_, err := fmt.Fprintln(w, folderTable(t))
			return err
		}
	})
}

// writeItems renders an item table in the selected format.
func (o *outputFlags) writeItems(ctx context.Context, cmd *cobra.Command, t *domain.ItemTable) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if format == export.FormatSQLite {
		return o.saveSQLite(func(s *export.Store) error { return s.SaveItems(ctx, t) })
	}
	return o.withWriter(cmd, func(w io.Writer) error {
		switch format {
		case export.FormatCSV:
			return export.WriteItemsCSV(w, t)
		case export.FormatJSON:
			return export.WriteItemsJSON(w, t)
		default:
			_, err := fmt.Fprintln(w, itemTable(t))
			return err
		}
	})
}

func (o *outputFlags) saveSQLite(fn func(*export.Store) error) error {
	if o.out == "" {
		return errors.New("--out is required for sqlite output")
	}
	store, err := export.OpenStore(o.out)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (o *outputFlags) withWriter(cmd *cobra.Command, fn func(io.Writer) error) error {
	if o.out == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func folderTable(t *domain.FolderTable) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FOLDER ID", "PARENT", "NAME", "ITEMS", "SUBFOLDERS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range t.Rows() {
		tbl.Row(shorten(r.FolderID), shorten(r.ParentFolderID), r.DisplayName,
			strconv.Itoa(r.ItemCount), strconv.Itoa(r.SubFolderCount))
	}
	return tbl.String()
}

func itemTable(t *domain.ItemTable) string {
	rows := t.Rows()
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ITEM ID", "RECEIVED", "HYDRATED", "ERROR").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && rows[row].EWSError != "":
				return errorStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		hydrated := ""
		if r.Hydrated() {
			hydrated = "yes"
		}
		tbl.Row(shorten(r.ItemID), r.DateTimeReceived, hydrated, r.EWSError)
	}
	return tbl.String()
}

// shorten keeps long EWS ids readable in a terminal table.
func shorten(id string) string {
	const limit = 24
	if len(id) <= limit {
		return id
	}
	return id[:10] + "..." + id[len(id)-11:]
}
