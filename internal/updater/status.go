package updater

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/downloader"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/modfilter"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/caedis/factorio-mod-downloader/internal/semver"
	"github.com/spf13/afero"
)

// LocalState describes how a mod's file in the output directory compares to
// the portal's latest release.
type LocalState int

const (
	Missing LocalState = iota
	Current
	Outdated
	// Changed means the expected file exists but its checksum differs.
	Changed
	Unknown
)

func (s LocalState) String() string {
	switch s {
	case Missing:
		return "missing"
	case Current:
		return "up to date"
	case Outdated:
		return "outdated"
	case Changed:
		return "checksum mismatch"
	default:
		return "unknown"
	}
}

type ModStatus struct {
	Mod     string
	State   LocalState
	Release portal.Release
	// Installed lists older versions found in the output directory.
	Installed []string
	Err       error
}

// Check compares the selected mods against the files in the output
// directory without downloading anything.
func Check(ctx context.Context, opts Options) ([]ModStatus, error) {
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
	client := portal.NewClient(opts.PortalURL, opts.HTTP, *creds)

	logging.Infof("Checking %d mods against %s\n", len(names), opts.OutputDir)

	var statuses []ModStatus
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return statuses, fmt.Errorf("interrupted before %s: %w", name, err)
		}
		st := modStatus(ctx, client, name, opts)
		statuses = append(statuses, st)

		switch {
		case st.Err != nil:
			logging.Infof("  %-40s %s (%v)\n", name, st.State, st.Err)
		case st.State == Outdated:
			logging.Infof("  %-40s %s (%s -> %s)\n", name, st.State, strings.Join(st.Installed, ", "), st.Release.Version)
		default:
			logging.Infof("  %-40s %s (%s)\n", name, st.State, st.Release.Version)
		}
	}

	counts := make(map[LocalState]int)
	for _, st := range statuses {
		counts[st.State]++
	}
	logging.Infof("\n%d up to date, %d outdated, %d missing, %d mismatched, %d unknown\n",
		counts[Current], counts[Outdated], counts[Missing], counts[Changed], counts[Unknown])
	return statuses, nil
}

func modStatus(ctx context.Context, client *portal.Client, name string, opts Options) ModStatus {
	mod, err := client.FetchMod(ctx, name)
	if err == nil {
		err = checkMetadata(mod)
	}
	if err != nil {
		return ModStatus{Mod: name, State: Unknown, Err: err}
	}
	rel, _ := mod.Latest()
	st := ModStatus{Mod: name, Release: rel}

	ok, err := downloader.UpToDate(opts.Fs, opts.OutputDir, rel.FileName, rel.SHA1)
	if err != nil {
		st.State = Unknown
		st.Err = err
		return st
	}
	if ok {
		st.State = Current
		return st
	}
	if exists, _ := afero.Exists(opts.Fs, filepath.Join(opts.OutputDir, rel.FileName)); exists {
		st.State = Changed
		return st
	}

	st.Installed, err = installedVersions(opts.Fs, opts.OutputDir, name)
	if err != nil {
		logging.Debugf("Verbose: listing installed versions of %s: %v\n", name, err)
	}
	if len(st.Installed) > 0 {
		st.State = Outdated
	} else {
		st.State = Missing
	}
	return st
}

// installedVersions finds <name>_<version>.zip files in dir. The suffix must
// parse as a version so that "foo" does not match "foo_bar_1.0.0.zip".
func installedVersions(fs afero.Fs, dir, name string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rest, ok := strings.CutPrefix(e.Name(), name+"_")
		if !ok {
			continue
		}
		version, ok := strings.CutSuffix(rest, ".zip")
		if !ok {
			continue
		}
		if _, err := semver.Parse(version); err == nil {
			versions = append(versions, version)
		}
	}
	return versions, nil
}
