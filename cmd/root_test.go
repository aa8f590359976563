package cmd

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	if args == nil {
		// cobra reads os.Args when given nil.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return rootCmd.Execute()
}

func TestRootRejectsUsageMistakes(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "two mod lists", args: []string{"a/mod-list.json", "b/mod-list.json"}},
		{name: "no mod list", args: nil},
		{name: "unknown flag", args: []string{"--no-such-flag", "mod-list.json"}},
		{name: "status with two mod lists", args: []string{"status", "a.json", "b.json"}},
		{name: "profile show without a name", args: []string{"profile", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeRoot(t, tt.args...)
			require.Error(t, err)
			assert.True(t, isUsageError(err), "want usage error, got %v", err)
		})
	}
}

func TestMissingModListNamesTheArgument(t *testing.T) {
	_, err := (&downloadFlags{}).options(nil)
	require.Error(t, err)
	assert.True(t, isUsageError(err))
	assert.Contains(t, err.Error(), "mod-list.json path is required")
}

func TestStatusOnlyBindsSelectionFlags(t *testing.T) {
	flags := statusCmd.Flags()
	for _, name := range []string{"mod-list", "all", "output-dir", "credentials", "player-data", "exclude", "portal-url", "rate"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	for _, name := range []string{"dry-run", "skip-existing", "strict"} {
		assert.Nil(t, flags.Lookup(name), name)
	}
}

func TestRootBindsRunFlags(t *testing.T) {
	for _, name := range []string{"dry-run", "skip-existing", "strict", "all"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("profile"))
}
