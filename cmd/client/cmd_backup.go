package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-flock-keeper/internal/app"
	"github.com/MKhiriev/go-flock-keeper/internal/client"
)

func (c *cli) backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		GroupID: "data",
		Short:   "Export and import local data",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a backup document to a file or stdout",
		Long: `Export writes every local store as one JSON document. Password hashes
and other secrets are replaced with empty values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				if out == "" {
					return a.Services().Backup.WriteTo(ctx, cmd.OutOrStdout())
				}

				f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return fmt.Errorf("open backup file: %w", err)
				}
				if err = a.Services().Backup.WriteTo(ctx, f); err != nil {
					f.Close()
					return err
				}
				if err = f.Close(); err != nil {
					return fmt.Errorf("close backup file: %w", err)
				}

				cmd.PrintErrf("%s: %s\n", app.MsgBackupWritten, out)
				return nil
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")

	now := &cobra.Command{
		Use:   "now",
		Short: "Write a backup into the configured backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				path, err := a.Services().BackupJob.RunOnce(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %s\n", app.MsgBackupWritten, path)
				return nil
			})
		},
	}

	restore := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore local stores from a backup document",
		Long: `Import validates the whole document before changing anything, then
replaces every store present in it. Stores absent from the document are left
untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open backup file: %w", err)
			}
			defer f.Close()

			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				restored, err := a.Services().Backup.Import(ctx, f)
				if err != nil {
					return err
				}

				cmd.Printf("%s: %s\n", app.MsgBackupRestored, strings.Join(restored, ", "))
				cmd.PrintErrln(app.MsgSecretsNotRestored)
				return nil
			})
		},
	}

	cmd.AddCommand(export, now, restore)
	return cmd
}
