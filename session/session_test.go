package session_test

import (
	"errors"
	"testing"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
	"github.com/smartsales365/admin-console/session/memstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type profile struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

func TestSaveLoginAndLoad(t *testing.T) {
	store := memstore.New()

	err := session.SaveLogin(store, &oauth2.Token{AccessToken: "acc", RefreshToken: "ref"}, profile{ID: 7, Email: "ana@smartsales.bo"})
	require.NoError(t, err)

	sess, err := session.Load(store)
	require.NoError(t, err)
	require.True(t, sess.LoggedIn())
	require.Equal(t, "acc", sess.AccessToken)
	require.Equal(t, "ref", sess.RefreshToken)
	require.JSONEq(t, `{"id":7,"email":"ana@smartsales.bo"}`, string(sess.User))

	var p profile
	ok, err := session.DecodeUser(store, &p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 7, p.ID)
}

func TestSaveLoginRejectsUnencodableUserWithoutWriting(t *testing.T) {
	store := memstore.New()

	err := session.SaveLogin(store, &oauth2.Token{AccessToken: "acc"}, make(chan int))
	require.Error(t, err)
	require.Equal(t, 0, store.Len())
}

func TestSaveLoginRequiresAccessToken(t *testing.T) {
	store := memstore.New()
	require.ErrorIs(t, session.SaveLogin(store, &oauth2.Token{}, profile{}), apperrors.ErrNoAccessToken)
	require.ErrorIs(t, session.SaveLogin(store, nil, profile{}), apperrors.ErrNoAccessToken)
}

func TestSetAccessTokenLeavesOtherKeys(t *testing.T) {
	store := memstore.New()
	require.NoError(t, session.SaveLogin(store, &oauth2.Token{AccessToken: "old", RefreshToken: "ref"}, profile{ID: 1}))

	require.NoError(t, session.SetAccessToken(store, "new"))

	sess, err := session.Load(store)
	require.NoError(t, err)
	require.Equal(t, "new", sess.AccessToken)
	require.Equal(t, "ref", sess.RefreshToken)
	require.JSONEq(t, `{"id":1,"email":""}`, string(sess.User))
}

func TestClear(t *testing.T) {
	store := memstore.New()
	require.NoError(t, session.SaveLogin(store, &oauth2.Token{AccessToken: "acc", RefreshToken: "ref"}, profile{ID: 1}))

	require.NoError(t, session.Clear(store))
	require.Equal(t, 0, store.Len())

	sess, err := session.Load(store)
	require.NoError(t, err)
	require.False(t, sess.LoggedIn())
	require.Nil(t, sess.User)
}

func TestDecodeUserAbsent(t *testing.T) {
	var p profile
	ok, err := session.DecodeUser(memstore.New(), &p)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeUserCorrupt(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Set(session.KeyUser, "{not json"))

	var p profile
	ok, err := session.DecodeUser(store, &p)
	require.Error(t, err)
	require.False(t, ok)
}

func TestTokenSource(t *testing.T) {
	store := memstore.New()
	src := session.TokenSource(store)

	_, err := src.Token()
	require.True(t, errors.Is(err, apperrors.ErrNoAccessToken))

	require.NoError(t, store.Set(session.KeyAccessToken, "acc"))
	tok, err := src.Token()
	require.NoError(t, err)
	require.Equal(t, "acc", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestInvalidKey(t *testing.T) {
	store := memstore.New()
	require.ErrorIs(t, store.Set("theme", "dark"), apperrors.ErrInvalidKey)
	_, _, err := store.Get("theme")
	require.ErrorIs(t, err, apperrors.ErrInvalidKey)
	require.ErrorIs(t, store.Remove("theme"), apperrors.ErrInvalidKey)
}
