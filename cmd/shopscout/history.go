package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FranksOps/shopscout/internal/storage"
	"github.com/spf13/cobra"
)

var (
	historyStore  string
	historyQuery  string
	historyURL    string
	historySince  time.Duration
	historyLimit  int
	historyOffset int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List products saved by earlier searches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kind, target := cfg.Store.Kind, cfg.Store.Target
		if historyStore != "" {
			var err error
			if kind, target, err = parseStoreSpec(historyStore); err != nil {
				return err
			}
		}
		if kind == "" {
			return fmt.Errorf("no store configured: set store.kind or pass --store")
		}

		b, err := openStore(ctx, kind, target)
		if err != nil {
			return err
		}
		defer b.Close()

		filter := storage.Filter{
			Query:  historyQuery,
			URL:    historyURL,
			Limit:  historyLimit,
			Offset: historyOffset,
		}
		if historySince > 0 {
			since := time.Now().UTC().Add(-historySince)
			filter.Since = &since
		}

		records, err := b.Query(ctx, filter)
		if err != nil {
			return fmt.Errorf("query store: %w", err)
		}

		out := cmd.OutOrStdout()
		switch historyFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		case "text", "":
			if len(records) == 0 {
				_, err := fmt.Fprintln(out, "No saved products.")
				return err
			}
			for _, r := range records {
				if _, err := fmt.Fprintf(out, "%s  %-20q  %s | %s\n    %s\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.Query, r.Title, r.Price, r.URL); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text or json)", historyFormat)
		}
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyStore, "store", "", "read from kind:target instead of the configured store")
	historyCmd.Flags().StringVar(&historyQuery, "query", "", "only products found by this query")
	historyCmd.Flags().StringVar(&historyURL, "url", "", "only this product url")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only products saved within this duration (e.g. 24h)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of products")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "skip this many products")
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(historyCmd)
}
