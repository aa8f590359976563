package updater

import (
	"github.com/caedis/factorio-mod-downloader/internal/httpclient"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/spf13/afero"
)

// DefaultOutputDir is relative to the working directory.
const DefaultOutputDir = "mods"

type Options struct {
	ModListPath     string
	CredentialsPath string
	PlayerDataPath  string
	IncludeDisabled bool
	Exclude         []string
	OutputDir       string
	PortalURL       string
	Rate            float64
	DryRun          bool
	SkipExisting    bool
	Progress        bool

	// Fs and HTTP default to the OS filesystem and a rate-limited client.
	Fs   afero.Fs
	HTTP httpclient.Doer
}

// Status tags the outcome of one mod.
type Status int

const (
	Success Status = iota
	Skipped
	Fatal
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Skipped:
		return "skipped"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing a single mod.
type Outcome struct {
	Mod     string
	Status  Status
	Release portal.Release
	// Path is set when a file was written.
	Path     string
	Size     int
	UpToDate bool
	Err      error
}

type Result struct {
	Selected int
	Outcomes []Outcome
	// Aborted is set when a fatal outcome stopped the batch early.
	Aborted bool
}

// Downloaded counts mods that were written or already up to date.
func (r *Result) Downloaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == Success {
			n++
		}
	}
	return n
}

// Failed returns the names of mods skipped because of an error.
func (r *Result) Failed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == Skipped {
			names = append(names, o.Mod)
		}
	}
	return names
}

// NotAttempted counts selected mods left unprocessed after an abort.
func (r *Result) NotAttempted() int {
	return r.Selected - len(r.Outcomes)
}

// AbortedAt returns the mod whose fatal outcome stopped the batch, or "".
func (r *Result) AbortedAt() string {
	for _, o := range r.Outcomes {
		if o.Status == Fatal {
			return o.Mod
		}
	}
	return ""
}
