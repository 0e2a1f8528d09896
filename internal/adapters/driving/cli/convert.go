package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ewsctl/internal/config"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driving"
)

var convertIDCmd = &cobra.Command{
	Use:   "convert-id <id>",
	Short: "Convert an item id between EWS id formats",
	Long: `Convert one id with the ConvertId operation and print the result.

Formats: EwsLegacyId, EwsId, EntryId, HexEntryId, StoreId, OwaId.
The owning mailbox defaults to the mailbox setting.

Examples:
  ewsctl convert-id 00000000DC7E... --from HexEntryId --to EwsId
  ewsctl convert-id AAMkADk... --from EwsId --to EntryId --mailbox jdoe@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runConvertID,
}

var (
	convertFrom    string
	convertTo      string
	convertMailbox string
)

func init() {
	convertIDCmd.Flags().StringVar(&convertFrom, "from", "EwsId", "source id format")
	convertIDCmd.Flags().StringVar(&convertTo, "to", "EntryId", "destination id format")
	convertIDCmd.Flags().StringVar(&convertMailbox, "mailbox", "", "SMTP address of the mailbox owning the id")
	rootCmd.AddCommand(convertIDCmd)
}

func runConvertID(cmd *cobra.Command, args []string) error {
	return withMailbox(cmd, func(ctx context.Context, cfg *config.Config, mb driving.MailboxService) error {
		mailbox := convertMailbox
		if mailbox == "" {
			mailbox = cfg.Mailbox
		}
		if mailbox == "" {
			return errors.New("no mailbox: pass --mailbox or set mailbox in the config")
		}

		id, err := mb.ConvertedID(ctx, domain.ConvertIDParams{
			ID:                args[0],
			SourceFormat:      convertFrom,
			DestinationFormat: convertTo,
			Mailbox:           mailbox,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	})
}
