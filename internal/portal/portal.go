package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/httpclient"
)

const DefaultBaseURL = "https://mods.factorio.com"

// Mod is the subset of the portal's mod endpoint we need.
type Mod struct {
	Name     string    `json:"name"`
	Releases []Release `json:"releases"`
}

// Release is one published version of a mod.
type Release struct {
	Version     string `json:"version"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	SHA1        string `json:"sha1"`
}

// Versions returns the release versions in the order the portal sent them.
func (m *Mod) Versions() []string {
	versions := make([]string, len(m.Releases))
	for i, r := range m.Releases {
		versions[i] = r.Version
	}
	return versions
}

// Latest returns the last release in the list. The portal sends releases
// oldest first; that order is trusted, not checked.
func (m *Mod) Latest() (Release, error) {
	if len(m.Releases) == 0 {
		return Release{}, &FetchError{Mod: m.Name, Op: "selecting release for", Err: errors.New("no releases published")}
	}
	return m.Releases[len(m.Releases)-1], nil
}

// Client talks to the mod portal. Every request carries the credentials as
// username/token query parameters.
type Client struct {
	BaseURL     string
	HTTP        httpclient.Doer
	Credentials config.Credentials
}

// NewClient returns a client for baseURL, or the public portal when empty.
func NewClient(baseURL string, doer httpclient.Doer, creds config.Credentials) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTP:        doer,
		Credentials: creds,
	}
}

// FetchMod looks up a mod's metadata by name.
func (c *Client) FetchMod(ctx context.Context, name string) (*Mod, error) {
	if name == "." || name == ".." {
		return nil, &FetchError{Mod: name, Op: "fetching info for", Err: errors.New("invalid mod name")}
	}
	endpoint, err := c.resolve("/api/mods/" + url.PathEscape(name))
	if err != nil {
		return nil, &FetchError{Mod: name, Op: "fetching info for", Err: err}
	}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, &FetchError{Mod: name, Op: "fetching info for", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Mod: name, Op: "fetching info for", StatusCode: resp.StatusCode}
	}

	var mod Mod
	if err := json.NewDecoder(resp.Body).Decode(&mod); err != nil {
		return nil, &FetchError{Mod: name, Op: "fetching info for", Err: fmt.Errorf("decoding response: %w", err)}
	}
	if mod.Name == "" {
		mod.Name = name
	}
	return &mod, nil
}

// Download fetches a release's file into memory. A 403 response yields an
// *AuthenticationError; any other failure a *FetchError.
func (c *Client) Download(ctx context.Context, mod string, rel Release) ([]byte, error) {
	endpoint, err := c.resolve(rel.DownloadURL)
	if err != nil {
		return nil, &FetchError{Mod: mod, Op: "downloading", Err: err}
	}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, &FetchError{Mod: mod, Op: "downloading", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{Mod: mod}
	case resp.StatusCode != http.StatusOK:
		return nil, &FetchError{Mod: mod, Op: "downloading", StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Mod: mod, Op: "downloading", Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}

// resolve joins ref onto the base URL and appends the credentials.
func (c *Client) resolve(ref string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	if strings.TrimSpace(ref) == "" {
		return "", errors.New("empty URL")
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", ref, err)
	}
	// Credentials are only ever sent to the portal host.
	if rel.IsAbs() || rel.Host != "" {
		return "", fmt.Errorf("URL %q is not relative to the portal", ref)
	}

	u := base.ResolveReference(rel)
	q := u.Query()
	q.Set("username", c.Credentials.User)
	q.Set("token", c.Credentials.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	doer := c.HTTP
	if doer == nil {
		doer = http.DefaultClient
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, redactError(err, c.Credentials.Token)
	}
	return resp, nil
}

// redactError strips the token from transport errors, which quote the full URL.
func redactError(err error, token string) error {
	if token == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(token), "REDACTED")
	msg = strings.ReplaceAll(msg, token, "REDACTED")
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}
