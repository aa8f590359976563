package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// DefaultCredentialsFile is read from the working directory unless overridden.
const DefaultCredentialsFile = "user-data.json"

const (
	EnvUser  = "FACTORIO_USERNAME"
	EnvToken = "FACTORIO_TOKEN"
)

var lookupEnv = os.LookupEnv

// Credentials authenticate every request to the mod portal.
type Credentials struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// playerData is the subset of the game's player-data.json holding portal credentials.
type playerData struct {
	ServiceUsername string `json:"service-username"`
	ServiceToken    string `json:"service-token"`
}

// LoadCredentials reads the credential file at path. When that file does not
// exist, playerDataPath (if set) is read instead. FACTORIO_USERNAME and
// FACTORIO_TOKEN override whatever the files hold. The result is validated.
func LoadCredentials(fs afero.Fs, path, playerDataPath string) (*Credentials, error) {
	creds, source, err := readCredentialSources(fs, path, playerDataPath)
	if err != nil {
		return nil, err
	}

	fromEnv := false
	if v, ok := lookupEnv(EnvUser); ok && strings.TrimSpace(v) != "" {
		creds.User = v
		fromEnv = true
	}
	if v, ok := lookupEnv(EnvToken); ok && strings.TrimSpace(v) != "" {
		creds.Token = v
		fromEnv = true
	}

	if source == "" {
		if !fromEnv {
			return nil, &ConfigError{Path: path, Reason: "credential file not found"}
		}
		source = "environment"
	}

	if err := creds.Validate(source); err != nil {
		return nil, err
	}
	return creds, nil
}

func readCredentialSources(fs afero.Fs, path, playerDataPath string) (*Credentials, string, error) {
	var creds Credentials
	found, err := readJSON(fs, path, &creds)
	if err != nil {
		return nil, "", &ConfigError{Path: path, Reason: "reading credentials", Err: err}
	}
	if found {
		return &creds, path, nil
	}

	if playerDataPath == "" {
		return &creds, "", nil
	}

	var pd playerData
	found, err = readJSON(fs, playerDataPath, &pd)
	if err != nil {
		return nil, "", &ConfigError{Path: playerDataPath, Reason: "reading player data", Err: err}
	}
	if !found {
		return &creds, "", nil
	}
	return &Credentials{User: pd.ServiceUsername, Token: pd.ServiceToken}, playerDataPath, nil
}

// readJSON reports found=false without error when path does not exist.
func readJSON(fs afero.Fs, path string, v any) (bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Validate checks that both fields are present and non-empty.
func (c *Credentials) Validate(source string) error {
	var missing []string
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return &ConfigError{
			Path:   source,
			Reason: "missing Factorio account information (" + strings.Join(missing, ", ") + ")",
		}
	}
	return nil
}
