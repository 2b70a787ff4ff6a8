package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/FranksOps/shopscout/internal/finder"
	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/report"
	"github.com/spf13/cobra"
)

var (
	searchFormat string
	searchStore  string
	searchReport string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the retailer for products and print what was found",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger, searchStore)
		if err != nil {
			return err
		}
		defer a.Close()

		run := a.finder.Run(ctx, strings.Join(args, " "))

		if err := a.save(ctx, run); err != nil {
			logger.Warn("failed to persist products", "err", err)
		}

		out := cmd.OutOrStdout()
		if searchReport != "" {
			return writeReport(out, searchReport, []*finder.Run{run})
		}
		return writeProducts(out, searchFormat, run.Records())
	},
}

func writeProducts(w io.Writer, format string, records []product.Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "text", "":
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, "No products found.")
			return err
		}
		for i, r := range records {
			if _, err := fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Price, r.URL); err != nil {
				return err
			}
			if r.ImageURL != "" {
				if _, err := fmt.Fprintf(w, "   image: %s\n", r.ImageURL); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

func writeReport(w io.Writer, format string, runs []*finder.Run) error {
	summary := report.GenerateSummary(runs)
	switch format {
	case "text":
		return report.WriteText(w, summary)
	case "json":
		return report.WriteJSON(w, summary)
	case "html":
		return report.WriteHTML(w, summary)
	default:
		return fmt.Errorf("unknown report format %q (want text, json or html)", format)
	}
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "output format: text or json")
	searchCmd.Flags().StringVar(&searchStore, "store", "", "persist products to kind:target (csv, json, sqlite, postgres); overrides store.kind")
	searchCmd.Flags().StringVar(&searchReport, "report", "", "print a run report instead of the product list: text, json or html")
	rootCmd.AddCommand(searchCmd)
}
