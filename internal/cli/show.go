package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrystalml/enron-summary/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a recorded run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runShow,
	}

	cmd.Flags().String("view", "", "Only one table: counts, sent or contacts")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	view, _ := cmd.Flags().GetString("view")
	id := store.Latest
	if len(args) > 0 {
		id = args[0]
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), id)
	if err != nil {
		exitErr("show", err)
	}

	switch view {
	case "":
		printJSON(cmd, run)
	case "counts":
		printJSON(cmd, run.Counts)
	case "sent":
		printJSON(cmd, run.Sent)
	case "contacts":
		printJSON(cmd, run.Contacts)
	default:
		exitErr("show", fmt.Errorf("unknown view %q (valid: counts, sent, contacts)", view))
	}
}
