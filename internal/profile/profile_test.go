package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadListDelete(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	names, err := List()
	require.NoError(t, err)
	assert.Empty(t, names)

	modList := "/srv/factorio/mods/mod-list.json"
	all := true
	rate := 2.5
	exclude := []string{"big-mod", "other"}
	require.NoError(t, Save("server", &Profile{
		ModList: &modList,
		All:     &all,
		Rate:    &rate,
		Exclude: &exclude,
	}))

	p, err := Load("server")
	require.NoError(t, err)
	require.NotNil(t, p.ModList)
	assert.Equal(t, modList, *p.ModList)
	require.NotNil(t, p.All)
	assert.True(t, *p.All)
	require.NotNil(t, p.Rate)
	assert.Equal(t, 2.5, *p.Rate)
	require.NotNil(t, p.Exclude)
	assert.Equal(t, exclude, *p.Exclude)
	assert.Nil(t, p.OutputDir, "unset fields stay nil")
	assert.Nil(t, p.Strict)

	names, err = List()
	require.NoError(t, err)
	assert.Equal(t, []string{"server"}, names)

	require.NoError(t, Delete("server"))
	_, err = Load("server")
	assert.ErrorContains(t, err, `loading profile "server"`)
}

func TestDirUsesXDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	assert.Equal(t, filepath.Join(base, "factorio-mod-downloader", "profiles"), Dir())
}

func TestRejectsPathLikeNames(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, name := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, Save(name, &Profile{}), name)
		_, err := Load(name)
		assert.Error(t, err, name)
		assert.Error(t, Delete(name), name)
	}
}
