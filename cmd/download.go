package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/httpclient"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/caedis/factorio-mod-downloader/internal/profile"
	"github.com/caedis/factorio-mod-downloader/internal/updater"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// downloadFlags are the options shared by the root command and profile create.
type downloadFlags struct {
	modList      string
	all          bool
	outputDir    string
	credentials  string
	playerData   string
	exclude      []string
	portalURL    string
	rate         float64
	dryRun       bool
	skipExisting bool
	strict       bool
}

func (f *downloadFlags) bind(flags *pflag.FlagSet) {
	f.bindSelection(flags)
	flags.BoolVar(&f.dryRun, "dry-run", false, "Resolve the latest release of each mod without downloading")
	flags.BoolVar(&f.skipExisting, "skip-existing", false, "Skip mods whose file already exists with the expected checksum")
	flags.BoolVar(&f.strict, "strict", false, "Exit with an error if any mod failed")
}

// bindSelection registers the mod selection, credential and portal flags.
func (f *downloadFlags) bindSelection(flags *pflag.FlagSet) {
	flags.StringVar(&f.modList, "mod-list", "", "Path to mod-list.json (alternative to the positional argument)")
	flags.BoolVarP(&f.all, "all", "a", false, "Download all mods in the mod list, including disabled ones")
	flags.StringVarP(&f.outputDir, "output-dir", "o", updater.DefaultOutputDir, "Directory to save downloaded mods to")
	flags.StringVar(&f.credentials, "credentials", config.DefaultCredentialsFile, "Path to the credential file with user and token")
	flags.StringVar(&f.playerData, "player-data", "", "Read credentials from Factorio's player-data.json when the credential file is missing")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Additional mod names to never download (repeatable)")
	flags.StringVar(&f.portalURL, "portal-url", portal.DefaultBaseURL, "Mod portal base URL")
	flags.Float64Var(&f.rate, "rate", httpclient.DefaultRate, "Maximum portal requests per second (0 for unlimited)")
}

// applyProfile copies profile values into f for flags the user did not set.
func (f *downloadFlags) applyProfile(p *profile.Profile, flags *pflag.FlagSet) {
	unset := func(name string) bool { return !flags.Changed(name) }

	if p.ModList != nil && unset("mod-list") {
		f.modList = *p.ModList
	}
	if p.All != nil && unset("all") {
		f.all = *p.All
	}
	if p.OutputDir != nil && unset("output-dir") {
		f.outputDir = *p.OutputDir
	}
	if p.Credentials != nil && unset("credentials") {
		f.credentials = *p.Credentials
	}
	if p.PlayerData != nil && unset("player-data") {
		f.playerData = *p.PlayerData
	}
	if p.Exclude != nil && unset("exclude") {
		f.exclude = append([]string(nil), *p.Exclude...)
	}
	if p.PortalURL != nil && unset("portal-url") {
		f.portalURL = *p.PortalURL
	}
	if p.Rate != nil && unset("rate") {
		f.rate = *p.Rate
	}
	if p.SkipExisting != nil && unset("skip-existing") {
		f.skipExisting = *p.SkipExisting
	}
	if p.Strict != nil && unset("strict") {
		f.strict = *p.Strict
	}
}

// toProfile returns a profile holding only the flags the user set.
func (f *downloadFlags) toProfile(flags *pflag.FlagSet) *profile.Profile {
	p := &profile.Profile{}
	set := flags.Changed

	if set("mod-list") {
		p.ModList = &f.modList
	}
	if set("all") {
		p.All = &f.all
	}
	if set("output-dir") {
		p.OutputDir = &f.outputDir
	}
	if set("credentials") {
		p.Credentials = &f.credentials
	}
	if set("player-data") {
		p.PlayerData = &f.playerData
	}
	if set("exclude") {
		p.Exclude = &f.exclude
	}
	if set("portal-url") {
		p.PortalURL = &f.portalURL
	}
	if set("rate") {
		p.Rate = &f.rate
	}
	if set("skip-existing") {
		p.SkipExisting = &f.skipExisting
	}
	if set("strict") {
		p.Strict = &f.strict
	}
	return p
}

func (f *downloadFlags) options(args []string) (updater.Options, error) {
	modList := f.modList
	if len(args) > 0 {
		modList = args[0]
	}
	if strings.TrimSpace(modList) == "" {
		return updater.Options{}, wrapUsageError(fmt.Errorf("a mod-list.json path is required"))
	}
	return updater.Options{
		ModListPath:     modList,
		CredentialsPath: f.credentials,
		PlayerDataPath:  f.playerData,
		IncludeDisabled: f.all,
		Exclude:         f.exclude,
		OutputDir:       f.outputDir,
		PortalURL:       f.portalURL,
		Rate:            f.rate,
		DryRun:          f.dryRun,
		SkipExisting:    f.skipExisting,
		Progress:        term.IsTerminal(int(os.Stderr.Fd())),
	}, nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return opts.download(ctx, args)
}

// download runs the batch and maps its result to the command's error:
// fatal errors are returned, skipped mods only fail the run under --strict.
func (f *downloadFlags) download(ctx context.Context, args []string) error {
	runOpts, err := f.options(args)
	if err != nil {
		return err
	}

	result, err := updater.Run(ctx, runOpts)
	if result != nil {
		printSummary(result, runOpts.DryRun)
	}
	if err != nil {
		return err
	}

	if failed := result.Failed(); f.strict && len(failed) > 0 {
		return fmt.Errorf("%d mod(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func printSummary(result *updater.Result, dryRun bool) {
	if dryRun {
		logging.Infof("\nResolved %d of %d mods\n", result.Downloaded(), result.Selected)
	} else {
		logging.Infof("\nDone: %d downloaded, %d failed", result.Downloaded(), len(result.Failed()))
		if result.Aborted {
			logging.Infof(", %d not attempted, aborted at %s", result.NotAttempted(), result.AbortedAt())
		}
		logging.Infoln()
	}

	if failed := result.Failed(); len(failed) > 0 {
		logging.Infof("  Failed: %s\n", strings.Join(failed, ", "))
	}
}
