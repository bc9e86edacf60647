package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartsales365/admin-console/session"
	"github.com/smartsales365/admin-console/session/filestore"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := filestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, session.SaveLogin(store, &oauth2.Token{AccessToken: "acc", RefreshToken: "ref"}, map[string]any{"id": 3}))

	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	sess, err := session.Load(reopened)
	require.NoError(t, err)
	require.Equal(t, "acc", sess.AccessToken)
	require.Equal(t, "ref", sess.RefreshToken)
	require.JSONEq(t, `{"id":3}`, string(sess.User))
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := filestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(session.KeyAccessToken, "acc"))
	require.FileExists(t, path)

	require.NoError(t, session.Clear(store))
	require.NoFileExists(t, path)

	_, ok, err := store.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveAbsentKey(t *testing.T) {
	store, err := filestore.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(session.KeyRefreshToken))
}

func TestCorruptFileIsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	store, err := filestore.Open(path)
	require.NoError(t, err)

	sess, err := session.Load(store)
	require.NoError(t, err)
	require.False(t, sess.LoggedIn())
}

func TestUnknownKeysInFileAreIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"acc","theme":"dark"}`), 0o600))

	store, err := filestore.Open(path)
	require.NoError(t, err)

	value, ok, err := store.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "acc", value)
}
