package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qrystalml/enron-summary/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs over HTTP",
		Run:   runServe,
	}

	cmd.Flags().StringP("addr", "a", "127.0.0.1:8080", "Listen address")
	bindFlags(cmd.Flags(), map[string]string{"addr": "addr"})

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.NewService(s).ListenAndServe(ctx, cfg.Addr); err != nil && ctx.Err() == nil {
		exitErr("serve", err)
	}
}

