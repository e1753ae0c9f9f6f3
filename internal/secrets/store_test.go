package secrets

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		t.Skip("config dir override relies on XDG")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestStoreFetchRoundTrip(t *testing.T) {
	setupStore(t)

	require.NoError(t, StoreToken("remote", "tok-abc-123"))

	got, err := FetchToken("remote")
	require.NoError(t, err)
	require.Equal(t, "tok-abc-123", got)

	// profile names are normalized
	got, err = FetchToken("  Remote ")
	require.NoError(t, err)
	require.Equal(t, "tok-abc-123", got)
}

func TestFetchUnknownProfile(t *testing.T) {
	setupStore(t)

	_, err := FetchToken("remote")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestDeleteToken(t *testing.T) {
	setupStore(t)

	require.NoError(t, StoreToken("remote", "tok"))
	require.NoError(t, DeleteToken("remote"))

	_, err := FetchToken("remote")
	require.Error(t, err)
}

func TestTokenNotStoredInPlaintext(t *testing.T) {
	setupStore(t)

	require.NoError(t, StoreToken("remote", "super-secret-token"))

	path, err := filePath()
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token")
}
