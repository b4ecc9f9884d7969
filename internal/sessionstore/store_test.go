package sessionstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"corepool-exporter/internal/corepool"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	dir := filepath.Join(t.TempDir(), "state")
	return New(filepath.Join(dir, "scraper.object"), filepath.Join(dir, "cookies.object"))
}

func TestLoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadClient()
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.LoadCookies()
	require.ErrorIs(t, err, ErrNotFound)

	var perr *PersistenceError
	require.False(t, errors.As(err, &perr))
}

func TestClientStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	state := corepool.ClientState{
		BaseUrl: "https://core-pool.com",
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) Chrome/126.0",
			"Accept-Language": "en-US,en;q=0.9",
		},
		ChallengeCookies: corepool.CookieJar{
			"cf_clearance": {
				Name:     "cf_clearance",
				Value:    "abc",
				Path:     "/",
				Expires:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
				HttpOnly: true,
				Secure:   true,
			},
		},
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.SaveClient(state))
	loaded, err := store.LoadClient()
	require.NoError(t, err)

	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Fatalf("client state mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, state.UserAgent(), loaded.UserAgent())
}

func TestCookiesOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveCookies(corepool.CookieJar{
		"core_session": {Name: "core_session", Value: "old", Path: "/"},
	}))
	require.NoError(t, store.SaveCookies(corepool.CookieJar{
		"core_session": {Name: "core_session", Value: "new", Path: "/"},
	}))

	jar, err := store.LoadCookies()
	require.NoError(t, err)
	require.Equal(t, "new", jar["core_session"].Value)

	// nothing but the two files is left behind in the directory
	entries, err := os.ReadDir(filepath.Dir(store.CookiesPath()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestEmptyCookies(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveCookies(corepool.CookieJar{}))

	jar, err := store.LoadCookies()
	require.NoError(t, err)
	require.NotNil(t, jar)
	require.Empty(t, jar)
}

func TestFilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveClient(corepool.ClientState{BaseUrl: "https://core-pool.com"}))

	info, err := os.Stat(store.ClientPath())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	info, err = os.Stat(filepath.Dir(store.ClientPath()))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.ClientPath()), 0700))
	require.NoError(t, os.WriteFile(store.ClientPath(), []byte("not gob"), 0600))

	_, err := store.LoadClient()
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "decode", perr.Op)
	require.Equal(t, store.ClientPath(), perr.Path)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Reset())

	require.NoError(t, store.SaveClient(corepool.ClientState{BaseUrl: "https://core-pool.com"}))
	require.NoError(t, store.SaveCookies(corepool.CookieJar{}))
	require.NoError(t, store.Reset())

	_, err := store.LoadClient()
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.LoadCookies()
	require.ErrorIs(t, err, ErrNotFound)
}
