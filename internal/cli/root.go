// Package cli implements the enron-summary CLI commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qrystalml/enron-summary/internal/config"
	"github.com/qrystalml/enron-summary/internal/logging"
	"github.com/qrystalml/enron-summary/internal/store"
)

var (
	configFile string
	v          = config.New()
	cfg        config.Config
	logCloser  io.Closer
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "enron-summary",
	Short: "Summarise an email event history",
	Long: "Expands an email event log into one row per recipient and derives per-person " +
		"sent/received counts, monthly sent series and monthly relative unique-contact series.",
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	f := RootCmd.PersistentFlags()
	f.StringVarP(&configFile, "config", "c", "", "Config file (yaml, toml or json)")
	f.StringP("db", "d", "", "Database path (default: $ENRON_SUMMARY_DB or ~/.enron-summary/summary.db)")
	f.String("delimiter", "|", "Recipient list delimiter")
	f.String("timezone", "UTC", "Time zone for monthly buckets")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-file", "", "Also write logs to this file")
	f.Bool("log-json", false, "Log JSON lines instead of console output")

	bindFlags(f, map[string]string{
		"db":        "db",
		"delimiter": "delimiter",
		"timezone":  "timezone",
		"log-level": "log.level",
		"log-file":  "log.file",
		"log-json":  "log.json",
	})
}

// bindFlags ties flags to config keys. A flag overrides env and file values
// only when it was set on the command line.
func bindFlags(f *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}
	logCloser, err = logging.Init(logging.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	})
	return err
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DB)
}

func exitErr(msg string, err error) {
	log.Error().Err(err).Msg(msg + " failed")
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
