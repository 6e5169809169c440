package cli

import (
	"fmt"

	"rentexpress/internal/jobs"

	"github.com/spf13/cobra"
)

var remindWindow int

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder and lease-expiry sweeps once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		window := a.cfg.Jobs.ReminderWindowDays
		if cmd.Flags().Changed("window") {
			window = remindWindow
		}
		runner := &jobs.Runner{
			Charges:    a.svc.Charges,
			Leases:     a.svc.Leases,
			WindowDays: window,
			Logger:     a.logger,
		}

		expired, err := runner.RunLeaseExpiry(cmd.Context())
		if err != nil {
			return err
		}
		rep, err := runner.RunReminders(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "leases expired: %d\nreminders: %d due, %d sent, %d skipped, %d failed\n",
			expired, rep.Due, rep.Sent, rep.Skipped, rep.Failed)
		return nil
	},
}

func init() {
	remindCmd.Flags().IntVar(&remindWindow, "window", 3, "days ahead of the due date to remind")
}
