package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haulzy/haulzy-backend/internal/bootstrap"
	cronjob "github.com/haulzy/haulzy-backend/internal/cron"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store today's dashboard summary now",
	Long:  "Runs the same job the nightly scheduler runs and prints the stored counts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
			return takeSnapshot(ctx, s.Dashboard, cmd.OutOrStdout())
		})
	},
}

func takeSnapshot(ctx context.Context, snap cronjob.Snapshotter, out io.Writer) error {
	s, err := snap.Snapshot(ctx, actor)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	fmt.Fprintf(out, "%s active_pickups=%d pending_returns=%d completed_today=%d routes_current=%d\n",
		s.Day.Format("2006-01-02"), s.ActivePickups, s.PendingReturns, s.CompletedToday, s.RoutesCurrent)
	return nil
}
