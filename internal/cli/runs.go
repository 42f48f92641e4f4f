package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrystalml/enron-summary/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Run:   runRuns,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{Limit: limit})
	if err != nil {
		exitErr("list runs", err)
	}

	if idsOnly {
		for _, r := range runs {
			fmt.Fprintln(cmd.OutOrStdout(), r.ID)
		}
		return
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return
	}
	printJSON(cmd, runs)
}
