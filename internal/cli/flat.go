package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "flat [file]",
		Short: "Print the expanded one-row-per-recipient table",
		Long:  "Expand every event's recipient list and print the flat rows as JSON, in source order.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runFlat,
	}
	cmd.Flags().IntP("limit", "l", 0, "Max rows (0 = all)")
	RootCmd.AddCommand(cmd)
}

func runFlat(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	rows := loadTable(cmd, args).Rows()
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	printJSON(cmd, rows)
}
