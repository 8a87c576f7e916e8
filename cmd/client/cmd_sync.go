package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-flock-keeper/internal/app"
	"github.com/MKhiriev/go-flock-keeper/internal/client"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		GroupID: "sync",
		Short:   "Run the background sync until interrupted",
		Long: `Run probes the system of record, watches the offline marker file,
syncs pending operations on every interval and on every return to online,
and writes scheduled backups when a backup directory is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				return a.Run(ctx)
			})
		},
	}
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		GroupID: "sync",
		Short:   "Replay pending operations now",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				if !a.Connect(ctx) {
					cmd.Println(app.MsgOffline)
					return nil
				}

				before, err := a.Status(ctx)
				if err != nil {
					return err
				}
				if err = a.Services().Coordinator.SyncNow(ctx); err != nil {
					cmd.PrintErrln(app.MsgSyncFailed)
					return err
				}

				after, err := a.Status(ctx)
				if err != nil {
					return err
				}
				if before.PendingCount == after.PendingCount && after.PendingCount > 0 {
					cmd.Println(app.MsgSyncSkipped)
					return nil
				}

				cmd.Printf("%s: %d operation(s) replayed\n", app.MsgSyncDone, before.PendingCount-after.PendingCount)
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "sync",
		Short:   "Print connectivity and pending operation count as JSON",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				a.Connect(ctx)

				state, err := a.Status(ctx)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err = enc.Encode(state); err != nil {
					return fmt.Errorf("encode status: %w", err)
				}
				return nil
			})
		},
	}
}
