package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/ledger"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transfers from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.cfgPath)
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg.Ledger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.EnsureTable(cmd.Context()); err != nil {
				return err
			}
			records, err := store.Select(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transfers recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tFILE\tRECIPIENT\tSIZE\tEXPIRES")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rec.DateAdded.Format("2006-01-02 15:04"),
					rec.FileBasename,
					rec.RecipientEmail,
					humanize.Bytes(uint64(rec.FileSizeBytes)),
					rec.ExpiryDate.Format("2006-01-02"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum rows to show (0 for all)")

	return cmd
}
