package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-flock-keeper/internal/client"
	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

type cli struct {
	flags *config.Flags
	info  models.BuildInfo
}

func newRootCmd(info models.BuildInfo) *cobra.Command {
	c := &cli{info: info}

	root := &cobra.Command{
		Use:   "flock-keeper",
		Short: "Offline-first congregation records client",
		Long: `flock-keeper keeps members, services, attendance, transactions and
settings in a local database and synchronizes them with the system of record
whenever it is reachable. Writes made while offline are queued and replayed
in order once the connection returns.`,
		SilenceUsage: true,
	}
	c.flags = config.NewFlags(root.PersistentFlags())

	root.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync commands:"},
		&cobra.Group{ID: "data", Title: "Data commands:"},
	)
	root.AddCommand(
		c.runCmd(),
		c.syncCmd(),
		c.statusCmd(),
		c.attendanceCmd(),
		c.backupCmd(),
		c.versionCmd(),
	)

	return root
}

// withApp loads the client configuration, builds the app and closes it after
// fn returns.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *client.App) error) (err error) {
	cfg, err := config.GetClientConfig(c.flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	log := logger.NewClientLogger("flock-keeper-client", cfg.Log)
	ctx := log.WithContext(cmd.Context())

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Err(err).Str("func", "cli.withApp").Msg("init client app error")
		return err
	}
	defer func() {
		if closeErr := app.Close(context.WithoutCancel(ctx)); closeErr != nil {
			log.Err(closeErr).Str("func", "cli.withApp").Msg("error closing local storages")
			err = errors.Join(err, closeErr)
		}
	}()

	return fn(ctx, app)
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(c.info.String())
		},
	}
}
