package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
)

// defaultFolder is the distinguished root of the mail folder hierarchy.
const defaultFolder = "msgfolderroot"

var foldersCmd = &cobra.Command{
	Use:   "folders [folder]",
	Short: "Walk a folder and all of its subfolders",
	Long: `Walk a folder depth-first and print one row per folder.

The folder is a distinguished folder name (inbox, msgfolderroot, ...) unless
--by-id is given, in which case it is an EWS FolderId.

Examples:
  ewsctl folders
  ewsctl folders inbox --format csv --out folders.csv
  ewsctl folders AAMkADk... --by-id --format sqlite --out mailbox.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFolders,
}

var folderShowCmd = &cobra.Command{
	Use:   "show [folder]",
	Short: "Print the raw GetFolder response of one folder",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFolderShow,
}

var folderChildrenCmd = &cobra.Command{
	Use:   "children [folder]",
	Short: "Print the raw FindFolder response for the direct children of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFolderChildren,
}

var (
	foldersByID   bool
	foldersOutput outputFlags
)

func init() {
	foldersCmd.PersistentFlags().BoolVar(&foldersByID, "by-id", false, "treat the folder argument as an EWS FolderId")
	foldersOutput.register(foldersCmd)
	foldersCmd.AddCommand(folderShowCmd)
	foldersCmd.AddCommand(folderChildrenCmd)
	rootCmd.AddCommand(foldersCmd)
}

// folderArg resolves the folder argument into an EWS folder type and id.
func folderArg(args []string, byID bool) (folderType, folderID string) {
	folderID = defaultFolder
	if len(args) > 0 {
		folderID = args[0]
	}
	if byID {
		return domain.FolderTypeID, folderID
	}
	return domain.FolderTypeDistinguished, folderID
}

func runFolders(cmd *cobra.Command, args []string) error {
	folderType, folderID := folderArg(args, foldersByID)
	return withMailbox(cmd, func(ctx context.Context, _ *config.Config, mb driving.MailboxService) error {
		folders, err := mb.FolderTree(ctx, folderType, folderID)
		if err != nil {
			return err
		}
		return foldersOutput.writeFolders(ctx, cmd, folders)
	})
}

func runFolderShow(cmd *cobra.Command, args []string) error {
	folderType, folderID := folderArg(args, foldersByID)
	return withMailbox(cmd, func(ctx context.Context, _ *config.Config, mb driving.MailboxService) error {
		resp, err := mb.GetFolder(ctx, folderType, folderID)
		if err != nil {
			return err
		}
		return printTree(cmd, resp)
	})
}

func runFolderChildren(cmd *cobra.Command, args []string) error {
	folderType, folderID := folderArg(args, foldersByID)
	return withMailbox(cmd, func(ctx context.Context, _ *config.Config, mb driving.MailboxService) error {
		resp, err := mb.GetSubfolders(ctx, folderType, folderID)
		if err != nil {
			return err
		}
		return printTree(cmd, resp)
	})
}

// printTree writes a response tree as indented JSON.
func printTree(cmd *cobra.Command, tree domain.Tree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
