package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/caedis/factorio-mod-downloader/internal/profile"
	"github.com/caedis/factorio-mod-downloader/internal/updater"
	"github.com/spf13/cobra"
)

var statusOpts = downloadFlags{}

var statusCmd = &cobra.Command{
	Use:   "status <mod-list.json>",
	Short: "Compare the output directory against the latest portal releases",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Apply profile defaults for flags not explicitly set by the user.
		if profileName != "" {
			p, err := profile.Load(profileName)
			if err != nil {
				return err
			}
			statusOpts.applyProfile(p, cmd.Flags())
		}

		runOpts, err := statusOpts.options(args)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = updater.Check(ctx, runOpts)
		return err
	},
}

func init() {
	statusOpts.bindSelection(statusCmd.Flags())
	rootCmd.AddCommand(statusCmd)
}
