package main

import (
	"errors"
	"fmt"

	"expense-tracker-go/internal/client/sync"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push pending expenses and refresh from the server",
		Long: `sync probes the server, pushes every expense recorded offline and replaces
the synced expenses with the server's copy. With --watch it keeps probing and
syncs each time the server becomes reachable again, until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offline {
				return errors.New("sync needs the server; drop --offline")
			}

			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.OutOrStdout()
			if a.Sessions.Current() == nil {
				fmt.Fprintln(out, warningStyle.Render("Not signed in; expenses stay on this device."))
			}

			if watch {
				a.OnReport(func(r sync.Report) { printReport(out, r) })
				fmt.Fprintln(out, subtleStyle.Render(fmt.Sprintf("Watching %s every %s, Ctrl+C to stop.", clientCfg.ServerURL, clientCfg.ConnectivityInterval)))
				a.Watch(cmd.Context())
				return nil
			}

			if !a.Connect(cmd.Context()) {
				return errors.New("server unreachable, pending expenses kept")
			}
			report, ok := a.LastReport()
			if !ok {
				if report, err = a.Coordinator.SyncExpenses(cmd.Context()); err != nil {
					return err
				}
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and sync on every reconnect")
	return cmd
}
