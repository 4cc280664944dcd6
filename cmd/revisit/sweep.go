package main

import (
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Deliver every due reminder once and exit",
	Long: `Sweep runs a single dispatcher pass. Use it when an external
scheduler such as a Kubernetes CronJob triggers delivery.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.wire(true); err != nil {
			return err
		}

		res, err := a.dispatcher.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("selected %d, notified %d, failed %d, skipped %d, marked %d\n",
			res.Selected, res.Notified, res.Failed, res.Skipped, res.Marked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
