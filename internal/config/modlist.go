package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/afero"
)

// ModList is the game's mod-list.json document.
type ModList struct {
	Mods []ModListEntry `json:"mods"`
}

// ModListEntry is a single mod in the list. Other keys such as "version" are ignored.
type ModListEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// LoadModList reads and parses the mod list at path.
func LoadModList(fs afero.Fs, path string) (*ModList, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Path: path, Reason: "mod list not found"}
		}
		return nil, &ConfigError{Path: path, Reason: "reading mod list", Err: err}
	}

	var list ModList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &ConfigError{Path: path, Reason: "parsing mod list", Err: err}
	}
	if list.Mods == nil {
		return nil, &ConfigError{Path: path, Reason: `missing "mods" key`}
	}
	return &list, nil
}
