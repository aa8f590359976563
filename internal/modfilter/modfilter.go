package modfilter

import (
	"slices"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/config"
)

// Builtin lists mods shipped with the game. The portal does not serve them,
// so they are never downloaded.
var Builtin = []string{"base", "elevated-rails", "quality", "space-age"}

// ExcludeSet builds the exclusion set from the built-in mods plus extra names.
// Blank extras are ignored.
func ExcludeSet(extra ...string) map[string]bool {
	set := make(map[string]bool, len(Builtin)+len(extra))
	for _, name := range Builtin {
		set[name] = true
	}
	for _, name := range extra {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = true
		}
	}
	return set
}

// Included reports whether a single entry should be downloaded.
func Included(entry config.ModListEntry, includeDisabled bool, exclude map[string]bool) bool {
	if exclude[entry.Name] {
		return false
	}
	return includeDisabled || entry.Enabled
}

// Select returns the names to download in mod-list order. A name listed more
// than once is returned only at its first included position.
func Select(entries []config.ModListEntry, includeDisabled bool, exclude map[string]bool) []string {
	var names []string
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || !Included(e, includeDisabled, exclude) {
			continue
		}
		if slices.Contains(names, e.Name) {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}
