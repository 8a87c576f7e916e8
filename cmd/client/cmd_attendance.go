// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-flock-keeper/internal/app"
	"github.com/MKhiriev/go-flock-keeper/internal/client"
	"github.com/MKhiriev/go-flock-keeper/models"
)

var errInvalidEntry = errors.New("entry must be in form <member>=<status>")

func (c *cli) attendanceCmd() *cobra.Command {
	var key models.ServiceKey

	cmd := &cobra.Command{
		Use:     "attendance",
		GroupID: "data",
		Short:   "Record and list attendance per service",
	}
	cmd.PersistentFlags().StringVar(&key.Date, "date", "", "Service date (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&key.ServiceName, "service", "", "Service name")
	_ = cmd.MarkPersistentFlagRequired("date")
	_ = cmd.MarkPersistentFlagRequired("service")

	mark := &cobra.Command{
		Use:   "mark <member>=<status>...",
		Short: "Replace the attendance of one service",
		Long: `Mark replaces every attendance row of the service with the given entries.
A member is referenced by id, email or "First Last" name. Status is one of
present, absent, late or excused. Marking the same service again replaces the
previous list.`,
		Example: `  flock-keeper attendance mark --date 2026-03-01 --service "Sunday Morning Service" \
    1=present grace@example.org=late "Alan Turing=absent"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseEntries(args)
			if err != nil {
				return err
			}

			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				a.Connect(ctx)

				result, err := a.Services().Attendance.Mark(ctx, key, entries)
				printWarnings(cmd, result.Warnings)
				if err != nil {
					return err
				}

				if result.Queued {
					cmd.Println(app.MsgAttendanceQueued)
				} else {
					cmd.Println(app.MsgAttendanceSaved)
				}
				printAttendance(cmd, result.Records)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the attendance of one service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *client.App) error {
				records, err := a.Services().Attendance.ForService(ctx, key)
				if err != nil {
					return err
				}
				printAttendance(cmd, records)
				return nil
			})
		},
	}

	cmd.AddCommand(mark, list)
	return cmd
}

// parseEntries turns "ref=status" arguments into a batch. The last '='
// separates the status, so references may contain '='.
func parseEntries(args []string) (map[string]models.AttendanceStatus, error) {
	entries := make(map[string]models.AttendanceStatus, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 || i == len(arg)-1 {
			return nil, fmt.Errorf("%w: %q", errInvalidEntry, arg)
		}

		ref := strings.TrimSpace(arg[:i])
		status := models.AttendanceStatus(strings.ToLower(strings.TrimSpace(arg[i+1:])))
		if ref == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidEntry, arg)
		}
		entries[ref] = status
	}
	return entries, nil
}

func printWarnings(cmd *cobra.Command, warnings []models.ResolutionWarning) {
	for _, w := range warnings {
		cmd.PrintErrf("%s %q: %s\n", app.MsgUnresolvedReference, w.Reference, w.Reason)
	}
}

func printAttendance(cmd *cobra.Command, records []models.AttendanceRecord) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tSTATUS\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.MemberID, r.Status, r.ID)
	}
	tw.Flush()
}
