// Command schoolctl administers accounts and inspects state directly in
// the configured store, without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/database"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// operator is the identity commands act as. It mirrors the superadmin so
// activity entries written from the CLI are attributed to the platform owner.
func operator(cfg *config.Config) models.AuthUser {
	return models.AuthUser{
		ID:         "superadmin",
		Email:      models.NormalizeEmail(cfg.SuperAdminEmail),
		FullName:   "Super Admin",
		Role:       models.RoleSuperAdmin,
		SchoolCode: cfg.SuperAdminSchoolCode,
	}
}

// env is shared by every subcommand.
type env struct {
	cfg     *config.Config
	open    func(ctx context.Context, cfg *config.Config) (*storage.Store, error)
	store   *storage.Store
	schools *tenant.Registry
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	backend, err := database.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(backend), nil
}

func (e *env) setup(cmd *cobra.Command) error {
	if e.cfg == nil {
		e.cfg = config.Load()
	}
	if e.store == nil {
		store, err := e.open(cmd.Context(), e.cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		e.store = store
	}
	if e.schools == nil {
		schools, err := tenant.LoadFromFile(e.cfg.SchoolsConfigPath)
		if err != nil {
			return fmt.Errorf("load schools: %w", err)
		}
		e.schools = schools
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(e *env) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "schoolctl",
		Short:         "Administer school platform accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.store == nil {
				return nil
			}
			return e.store.Close()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(accountsCmd(e), deputiesCmd(e), activityCmd(e), sessionCmd(e))
	return cmd
}

func main() {
	e := &env{open: openStore}
	if err := newRootCmd(e).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
