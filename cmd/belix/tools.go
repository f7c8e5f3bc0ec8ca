package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	discordpkg "github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/repository"
)

const importTimeout = 2 * time.Minute

var rookiesCmd = &cobra.Command{
	Use:   "rookies",
	Short: "Export members holding the rookie role to rookiesData.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		injector := setupDI(cfg)
		dc, err := invoke[discordpkg.Client](injector, "discord client")
		if err != nil {
			return err
		}
		store, err := invoke[members.RookieStore](injector, "rookie store")
		if err != nil {
			return err
		}
		n, err := members.ExportRookies(cfg, dc, store, time.Now())
		if err != nil {
			return err
		}
		slog.Info("exported rookies", "count", n, "role", cfg.RookieRoleName)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rookies\n", n)
		return nil
	},
}

var importMembersCmd = &cobra.Command{
	Use:   "import-members <file>",
	Short: "Insert members from a user.json export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		records, err := members.ParseImport(b)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		injector := setupDI(cfg)
		repo, err := invoke[repository.Repository](injector, "repository")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
		defer cancel()
		res := members.ImportMembers(ctx, repo, records)
		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d members, %d failed\n", res.Inserted, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d of %d members failed to import", res.Failed, len(records))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
