package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/repository"
)

const adminTimeout = 30 * time.Second

var activityDays int

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Inspect and correct member records",
}

var memberActivityCmd = &cobra.Command{
	Use:   "activity <member-id>",
	Short: "Summarize a member's recent activity",
	Args:  cobra.ExactArgs(1),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *members.Admin, args []string) error {
		report, err := a.Activity(ctx, args[0], activityDays)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		s := report.Summary
		fmt.Fprintf(out, "Since %s: %d messages, %d voice minutes, %d reactions over %d active days\n",
			report.Since.Format(time.DateOnly), s.TotalMessages, s.TotalVoiceMinutes, s.TotalReactions, s.ActiveDays)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tCHANNEL")
		for _, act := range report.Activities {
			fmt.Fprintf(w, "%s\t%s\t%s\n", act.ActivityTimestamp.Format(time.DateTime), act.ActivityType, act.ChannelName)
		}
		return w.Flush()
	}),
}

var memberSetPointsCmd = &cobra.Command{
	Use:   "set-points <member-id> <points>",
	Short: "Overwrite a member's leaderboard points",
	Args:  cobra.ExactArgs(2),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *members.Admin, args []string) error {
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("points must be a number: %w", err)
		}
		if err := a.SetPoints(ctx, args[0], points); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %d points\n", args[0], points)
		return nil
	}),
}

var memberSetBirthdayCmd = &cobra.Command{
	Use:   "set-birthday <member-id> [date]",
	Short: "Set or clear a member's birthday (YYYY-MM-DD or DD-MM-YYYY)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *members.Admin, args []string) error {
		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		if err := a.SetBirthday(ctx, args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated birthday of %s\n", args[0])
		return nil
	}),
}

var memberAddBelmontsCmd = &cobra.Command{
	Use:   "add-belmonts <discord-username> <points>",
	Short: "Add Belmonts points to a member found by Discord username",
	Args:  cobra.ExactArgs(2),
	RunE: withAdmin(func(ctx context.Context, cmd *cobra.Command, a *members.Admin, args []string) error {
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("points must be a number: %w", err)
		}
		total, err := a.AddBelmontsPoints(ctx, args[0], points)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d Belmonts points\n", args[0], total)
		return nil
	}),
}

func init() {
	memberActivityCmd.Flags().IntVar(&activityDays, "days", 30, "number of days to include")
	memberCmd.AddCommand(memberActivityCmd, memberSetPointsCmd, memberSetBirthdayCmd, memberAddBelmontsCmd)
	rootCmd.AddCommand(memberCmd)
}

func withAdmin(run func(ctx context.Context, cmd *cobra.Command, a *members.Admin, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repo, err := invoke[repository.Repository](setupDI(cfg), "repository")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		return run(ctx, cmd, members.NewAdmin(repo), args)
	}
}
