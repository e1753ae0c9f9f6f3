package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st, err := Load()
	require.NoError(t, err)
	require.Equal(t, State{}, st)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Save(State{LastWatchlistID: "wl-42"}))

	st, err := Load()
	require.NoError(t, err)
	require.Equal(t, "wl-42", st.LastWatchlistID)

	require.NoError(t, Save(State{LastWatchlistID: "wl-7"}))
	st, err = Load()
	require.NoError(t, err)
	require.Equal(t, "wl-7", st.LastWatchlistID)
}
