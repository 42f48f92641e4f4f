package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrystalml/enron-summary/internal/stats"
	"github.com/qrystalml/enron-summary/internal/summary"
	"github.com/qrystalml/enron-summary/internal/table"
)

func init() {
	countsCmd := &cobra.Command{
		Use:   "counts [file]",
		Short: "Print sent/received counts per person",
		Args:  cobra.MaximumNArgs(1),
		Run:   runCounts,
	}
	countsCmd.Flags().IntP("limit", "l", 0, "Max rows (0 = all)")

	sentCmd := &cobra.Command{
		Use:   "sent [file]",
		Short: "Print the monthly sent-message series for people",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSent,
	}
	sentCmd.Flags().StringP("people", "p", "", "Comma-separated people (required)")
	sentCmd.MarkFlagRequired("people")

	contactsCmd := &cobra.Command{
		Use:   "contacts [file]",
		Short: "Print the monthly relative unique-contact series for people",
		Args:  cobra.MaximumNArgs(1),
		Run:   runContacts,
	}
	contactsCmd.Flags().StringP("people", "p", "", "Comma-separated people (required)")
	contactsCmd.MarkFlagRequired("people")

	RootCmd.AddCommand(countsCmd, sentCmd, contactsCmd)
}

func loadTable(cmd *cobra.Command, args []string) *table.Table {
	tbl, _, err := summary.Load(cmd.Context(), inputPath(args), cfg.Delimiter, cfg.Location())
	if err != nil {
		exitErr("load", err)
	}
	return tbl
}

func runCounts(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	counts := stats.Counts(loadTable(cmd, args))
	if limit > 0 && limit < len(counts) {
		counts = counts[:limit]
	}
	printJSON(cmd, counts)
}

func runSent(cmd *cobra.Command, args []string) {
	peopleStr, _ := cmd.Flags().GetString("people")
	printJSON(cmd, stats.MonthlySent(loadTable(cmd, args), splitList(peopleStr)))
}

func runContacts(cmd *cobra.Command, args []string) {
	peopleStr, _ := cmd.Flags().GetString("people")
	printJSON(cmd, stats.MonthlyRelativeContacts(loadTable(cmd, args), splitList(peopleStr)))
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
