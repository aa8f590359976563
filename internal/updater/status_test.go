package updater

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/caedis/factorio-mod-downloader/internal/portal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckClassifiesLocalFiles(t *testing.T) {
	log := captureLog(t)
	m := &mockPortal{
		mods: map[string][]portal.Release{
			"current":  {release("1.0.0", "current_1.0.0.zip", "/c", helloSHA1)},
			"old":      {release("1.0.0", "old_1.0.0.zip", "/o1", "aaa"), release("1.1.0", "old_1.1.0.zip", "/o2", helloSHA1)},
			"absent":   {release("0.1.0", "absent_0.1.0.zip", "/a", helloSHA1)},
			"tampered": {release("3.0.0", "tampered_3.0.0.zip", "/t", helloSHA1)},
		},
	}
	server := newMockPortal(t, m)
	fs := newWorkspace(t, `{"mods":[
		{"name":"current","enabled":true},
		{"name":"old","enabled":true},
		{"name":"absent","enabled":true},
		{"name":"tampered","enabled":true},
		{"name":"gone","enabled":true}
	]}`)
	for name, data := range map[string]string{
		"current_1.0.0.zip":  "hello",
		"old_1.0.0.zip":      "old",
		"old_extra_2.0.zip":  "unrelated",
		"tampered_3.0.0.zip": "not hello",
		"absent_notes.zip":   "unrelated",
	} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("mods", name), []byte(data), 0o644))
	}

	statuses, err := Check(context.Background(), testOptions(fs, server))
	require.NoError(t, err)
	require.Len(t, statuses, 5)

	got := make(map[string]LocalState)
	for _, st := range statuses {
		got[st.Mod] = st.State
	}
	assert.Equal(t, map[string]LocalState{
		"current":  Current,
		"old":      Outdated,
		"absent":   Missing,
		"tampered": Changed,
		"gone":     Unknown,
	}, got)

	assert.Equal(t, []string{"1.0.0"}, statuses[1].Installed)
	assert.Error(t, statuses[4].Err)
	assert.Contains(t, log.String(), "1 up to date, 1 outdated, 1 missing, 1 mismatched, 1 unknown")

	for _, p := range m.requested() {
		assert.Contains(t, p, "/api/mods/", "status must not download files")
	}
}

func TestCheckWithoutOutputDir(t *testing.T) {
	captureLog(t)
	m := &mockPortal{
		mods: map[string][]portal.Release{"foo": {release("1.0.0", "foo_1.0.0.zip", "/x", helloSHA1)}},
	}
	server := newMockPortal(t, m)
	fs := newWorkspace(t, `{"mods":[{"name":"foo","enabled":true}]}`)

	statuses, err := Check(context.Background(), testOptions(fs, server))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, Missing, statuses[0].State)

	exists, err := afero.DirExists(fs, "mods")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStateString(t *testing.T) {
	assert.Equal(t, "up to date", Current.String())
	assert.Equal(t, "checksum mismatch", Changed.String())
	assert.Equal(t, "unknown", LocalState(42).String())
}
