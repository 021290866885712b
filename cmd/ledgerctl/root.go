package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/platform/storage"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	actor  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the ERP ledger from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			// Logs go to stderr so stdout stays machine-readable.
			a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.actor, "actor", "ledgerctl", "actor recorded on audit fields")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedAccountsCmd(a),
		newPeriodCmd(a),
		newAgingCmd(a),
		newMarkOverdueCmd(a),
		newVerifyCmd(a),
		newTokenCmd(a),
	)
	return root
}

// withServices opens the configured store, builds the services and runs fn.
func (a *app) withServices(ctx context.Context, fn func(*portssvc.ServiceContainer) error) error {
	repos, closeStore, err := storage.Open(ctx, a.cfg, a.logger, false)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(services.NewServiceContainer(a.cfg, repos))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDateFlag reads an optional YYYY-MM-DD flag, defaulting to today in UTC.
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}
