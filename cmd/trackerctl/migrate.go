package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.backendConfig()
			if err != nil {
				return err
			}
			if cfg.Type == backend.MemoryBackend {
				fmt.Fprintln(a.out, "memory backend has no schema")
				return nil
			}
			if err := backend.Migrate(cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "migrations applied (%s)\n", cfg.Type)
			return nil
		},
	}
}
