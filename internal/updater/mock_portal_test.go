package updater

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/caedis/factorio-mod-downloader/internal/config"
	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const helloSHA1 = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

type mockPortal struct {
	mu       sync.Mutex
	requests []string

	mods   map[string][]portal.Release
	files  map[string][]byte
	status map[string]int
}

func newMockPortal(t *testing.T, m *mockPortal) *httptest.Server {
	t.Helper()
	if m.status == nil {
		m.status = map[string]int{}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.URL.Path)
		m.mu.Unlock()

		if r.URL.Query().Get("username") != "alice" || r.URL.Query().Get("token") != "s3cret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if code, ok := m.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}

		if name, ok := strings.CutPrefix(r.URL.Path, "/api/mods/"); ok {
			releases, found := m.mods[name]
			if !found {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"name": name, "releases": releases})
			return
		}

		data, ok := m.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func (m *mockPortal) requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// captureLog redirects logging output for the duration of a test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(nil) })
	return &buf
}

// newWorkspace returns an in-memory filesystem seeded with a mod list and
// valid credentials.
func newWorkspace(t *testing.T, modList string) afero.Fs {
	t.Helper()
	t.Setenv(config.EnvUser, "")
	t.Setenv(config.EnvToken, "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "mod-list.json", []byte(modList), 0o644))
	require.NoError(t, afero.WriteFile(fs, "user-data.json", []byte(`{"user":"alice","token":"s3cret"}`), 0o644))
	return fs
}

func testOptions(fs afero.Fs, server *httptest.Server) Options {
	return Options{
		ModListPath: "mod-list.json",
		Fs:          fs,
		HTTP:        server.Client(),
		PortalURL:   server.URL,
	}
}

func release(version, file, path, sha string) portal.Release {
	return portal.Release{Version: version, FileName: file, DownloadURL: path, SHA1: sha}
}
