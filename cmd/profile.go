package cmd

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved option profiles",
}

// Flags for profile create. These are separate from the root flags so that
// creating a profile never changes the options of the current run.
var (
	profOpts    = downloadFlags{}
	profVerbose bool
	profLogFile string
)

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new profile from the given flags",
	Example: `  factorio-mod-downloader profile create server --mod-list /srv/factorio/mods/mod-list.json --all
  factorio-mod-downloader --profile server`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := profOpts.toProfile(cmd.Flags())
		if cmd.Flags().Changed("verbose") {
			p.Verbose = &profVerbose
		}
		if cmd.Flags().Changed("log-file") {
			p.LogFile = &profLogFile
		}

		if err := profile.Save(args[0], p); err != nil {
			return err
		}
		logging.Infof("Profile %q saved to %s\n", args[0], profile.Dir())
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := profile.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			logging.Infoln("No profiles saved.")
			return nil
		}
		for _, n := range names {
			logging.Infoln(n)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's contents",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return err
		}
		logging.Infof("%s", buf.String())
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := profile.Delete(args[0]); err != nil {
			return err
		}
		logging.Infof("Profile %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	profOpts.bind(profileCreateCmd.Flags())
	profileCreateCmd.Flags().BoolVar(&profVerbose, "verbose", false, "Enable verbose logging")
	profileCreateCmd.Flags().StringVar(&profLogFile, "log-file", "", "Write command output to a log file")

	profileCmd.AddCommand(profileCreateCmd, profileListCmd, profileShowCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}
