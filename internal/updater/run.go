package updater

import (
	"context"
	"fmt"
	"os"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/downloader"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/modfilter"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
)

// Run loads the mod list and credentials, selects mods and downloads each one.
// Configuration problems are returned before any request is made. A fatal
// outcome stops the batch and is returned as the error alongside the partial
// result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = normalizeRunOptions(opts)
	logRunStart(opts)

	list, err := config.LoadModList(opts.Fs, opts.ModListPath)
	if err != nil {
		return nil, err
	}
	creds, err := config.LoadCredentials(opts.Fs, opts.CredentialsPath, opts.PlayerDataPath)
	if err != nil {
		return nil, err
	}

	names := modfilter.Select(list.Mods, opts.IncludeDisabled, modfilter.ExcludeSet(opts.Exclude...))
	logging.Debugf("Verbose: mod list entries=%d selected=%d\n", len(list.Mods), len(names))

	client := portal.NewClient(opts.PortalURL, opts.HTTP, *creds)
	return Process(ctx, client, names, opts)
}

// Process runs the fetch-verify-store loop over names in order.
func Process(ctx context.Context, client *portal.Client, names []string, opts Options) (*Result, error) {
	opts = normalizeRunOptions(opts)
	result := &Result{Selected: len(names)}

	if !opts.DryRun {
		if err := downloader.EnsureDir(opts.Fs, opts.OutputDir); err != nil {
			return result, fmt.Errorf("creating output directory: %w", err)
		}
	}

	if opts.DryRun {
		logging.Infof("Dry run - resolving %d mods, nothing will be downloaded\n", len(names))
	} else {
		logging.Infof("Downloading %d mods\n", len(names))
	}

	bar := newProgress(len(names), os.Stderr, opts.Progress)
	defer bar.finish()

	for _, name := range names {
		bar.describe(name)
		outcome := processMod(ctx, client, name, opts)
		result.Outcomes = append(result.Outcomes, outcome)
		bar.step()

		if outcome.Status == Fatal {
			result.Aborted = true
			return result, outcome.Err
		}
	}
	return result, nil
}
