package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/downloader"
	"github.com/caedis/factorio-mod-downloader/internal/httpclient"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/caedis/factorio-mod-downloader/internal/semver"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

func normalizeRunOptions(opts Options) Options {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if strings.TrimSpace(opts.CredentialsPath) == "" {
		opts.CredentialsPath = config.DefaultCredentialsFile
	}
	if opts.HTTP == nil {
		opts.HTTP = httpclient.New(opts.Rate)
	}
	return opts
}

func logRunStart(opts Options) {
	logging.Debugf(
		"Verbose: run start mod-list=%q credentials=%q player-data=%q all=%t exclude=%v output=%q portal=%q rate=%g dry-run=%t skip-existing=%t\n",
		opts.ModListPath,
		opts.CredentialsPath,
		opts.PlayerDataPath,
		opts.IncludeDisabled,
		opts.Exclude,
		opts.OutputDir,
		opts.PortalURL,
		opts.Rate,
		opts.DryRun,
		opts.SkipExisting,
	)
}

func skipped(name string, rel portal.Release, err error) Outcome {
	logging.Debugf("Verbose: skipping mod=%s: %v\n", name, err)
	return Outcome{Mod: name, Status: Skipped, Release: rel, Err: err}
}

func fatal(name string, err error) Outcome {
	return Outcome{Mod: name, Status: Fatal, Err: err}
}

// processMod runs the straight-line fetch, select, download, verify and store
// sequence for one mod. Only authentication failure and cancellation are fatal.
func processMod(ctx context.Context, client *portal.Client, name string, opts Options) Outcome {
	if err := ctx.Err(); err != nil {
		return fatal(name, fmt.Errorf("interrupted before %s: %w", name, err))
	}

	mod, err := client.FetchMod(ctx, name)
	if err == nil {
		err = checkMetadata(mod)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fatal(name, fmt.Errorf("interrupted during %s: %w", name, ctxErr))
		}
		logging.Infof("Failed to get mod info: %s\n", name)
		return skipped(name, portal.Release{}, err)
	}
	rel, _ := mod.Latest()
	logging.Debugf("Verbose: selected mod=%s version=%s file=%s releases=%d\n", name, rel.Version, rel.FileName, len(mod.Releases))

	if opts.DryRun {
		logging.Infof("  %s %s (%s)\n", name, rel.Version, rel.FileName)
		return Outcome{Mod: name, Status: Success, Release: rel}
	}

	if opts.SkipExisting {
		ok, err := downloader.UpToDate(opts.Fs, opts.OutputDir, rel.FileName, rel.SHA1)
		if err != nil {
			logging.Debugf("Verbose: could not check existing file for %s: %v\n", name, err)
		}
		if ok {
			logging.Infof("Up to date %s\n", rel.FileName)
			return Outcome{Mod: name, Status: Success, Release: rel, UpToDate: true}
		}
	}

	data, err := client.Download(ctx, name, rel)
	if err != nil {
		var authErr *portal.AuthenticationError
		if errors.As(err, &authErr) {
			logging.Infoln("Failed to authenticate: Check username and token")
			return fatal(name, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fatal(name, fmt.Errorf("interrupted during %s: %w", name, ctxErr))
		}
		logging.Infof("Failed to download mod: %s\n", name)
		return skipped(name, rel, err)
	}

	if err := downloader.Verify(name, data, rel.SHA1); err != nil {
		logging.Infoln(err.Error())
		return skipped(name, rel, err)
	}

	path, err := downloader.Store(opts.Fs, opts.OutputDir, rel.FileName, data)
	if err != nil {
		logging.Infof("Failed to save mod: %s: %v\n", name, err)
		return skipped(name, rel, err)
	}

	logging.Infof("Downloaded %s (%s)\n", rel.FileName, humanize.Bytes(uint64(len(data))))
	return Outcome{Mod: name, Status: Success, Release: rel, Path: path, Size: len(data)}
}

// checkMetadata makes sure the latest release can be acted on. Release order
// is trusted; an out-of-order list only produces a verbose warning. A missing
// sha1 is left to Verify, which reports it as a checksum mismatch.
func checkMetadata(mod *portal.Mod) error {
	rel, err := mod.Latest()
	if err != nil {
		return err
	}
	if err := downloader.ValidateFilename(rel.FileName); err != nil {
		return &portal.FetchError{Mod: mod.Name, Op: "selecting release for", Err: err}
	}
	if logging.Verbose() && !semver.LastIsHighest(mod.Versions()) {
		logging.Warnf("releases for %s are not in ascending order; using the last one (%s)\n", mod.Name, rel.Version)
	}
	return nil
}
