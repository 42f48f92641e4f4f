package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrystalml/enron-summary/internal/summary"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Run the full summary and save reports",
		Long: "Load the event history, compute per-person counts, pick the top senders " +
			"(minus exclusions), compute both monthly series, write CSV reports and record the run.",
		Args: cobra.MaximumNArgs(1),
		Run:  runSummarize,
	}

	cmd.Flags().IntP("top", "n", 10, "Number of top senders to chart")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Identifiers to drop from the top senders")
	cmd.Flags().StringP("results", "o", "./results", "Directory for CSV reports")
	cmd.Flags().StringP("people", "p", "", "Comma-separated people to chart instead of the top senders")
	cmd.Flags().Bool("no-save", false, "Do not record the run in the database")

	bindFlags(cmd.Flags(), map[string]string{
		"top":     "top_senders",
		"exclude": "exclude",
		"results": "results_dir",
	})

	RootCmd.AddCommand(cmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	peopleStr, _ := cmd.Flags().GetString("people")
	noSave, _ := cmd.Flags().GetBool("no-save")

	res, err := summary.Run(cmd.Context(), summary.Params{
		Input:      inputPath(args),
		Delimiter:  cfg.Delimiter,
		Location:   cfg.Location(),
		TopSenders: cfg.TopSenders,
		Exclude:    cfg.Exclude,
		People:     splitList(peopleStr),
		ResultsDir: cfg.ResultsDir,
	})
	if err != nil {
		exitErr("summarize", err)
	}

	out := struct {
		RunID    string   `json:"run_id,omitempty"`
		Events   int      `json:"events"`
		FlatRows int      `json:"flat_rows"`
		Messages int      `json:"messages"`
		Skipped  int      `json:"skipped"`
		Persons  int      `json:"persons"`
		People   []string `json:"people"`
		Files    []string `json:"files"`
	}{
		Events:   res.Params.Events,
		FlatRows: res.Params.FlatRows,
		Messages: res.Params.Messages,
		Skipped:  res.Params.Skipped,
		Persons:  len(res.Counts),
		People:   res.Params.People,
		Files:    res.Files,
	}

	if !noSave {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		run, err := s.SaveRun(cmd.Context(), res.Params)
		if err != nil {
			exitErr("save run", err)
		}
		out.RunID = run.ID
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// inputPath returns the positional input file, falling back to config.
func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Input
}
