// Package session persists the operator's login across restarts: the access
// token, the refresh token and a cached copy of the user profile, each kept
// under its own key.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"golang.org/x/oauth2"
)

type Key string

const (
	KeyAccessToken  Key = "accessToken"
	KeyRefreshToken Key = "refreshToken"
	KeyUser         Key = "user"
)

// Keys lists every key a Store may hold.
var Keys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// Store is a small key/value store over the fixed set of session keys.
// Values are strings; the user profile is stored JSON encoded.
type Store interface {
	Get(key Key) (string, bool, error)
	Set(key Key, value string) error
	Remove(key Key) error
}

// ValidKey reports whether key is one of the session keys.
func ValidKey(key Key) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Session is a snapshot of everything a Store holds.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         json.RawMessage
}

// LoggedIn is true when an access token is present. The cached user alone
// does not count.
func (s Session) LoggedIn() bool {
	return s.AccessToken != ""
}

// Load reads all three keys from store.
func Load(store Store) (Session, error) {
	var sess Session
	var err error

	if sess.AccessToken, _, err = store.Get(KeyAccessToken); err != nil {
		return Session{}, fmt.Errorf("read access token: %w", err)
	}
	if sess.RefreshToken, _, err = store.Get(KeyRefreshToken); err != nil {
		return Session{}, fmt.Errorf("read refresh token: %w", err)
	}
	user, ok, err := store.Get(KeyUser)
	if err != nil {
		return Session{}, fmt.Errorf("read user: %w", err)
	}
	if ok {
		sess.User = json.RawMessage(user)
	}
	return sess, nil
}

// SaveLogin writes the token pair and the user profile. The profile is
// encoded before anything is written so a bad profile leaves the store
// untouched.
func SaveLogin(store Store, token *oauth2.Token, user any) error {
	if token == nil || token.AccessToken == "" {
		return apperrors.ErrNoAccessToken
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := store.Set(KeyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if token.RefreshToken != "" {
		if err := store.Set(KeyRefreshToken, token.RefreshToken); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
	} else if err := store.Remove(KeyRefreshToken); err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}
	if err := store.Set(KeyUser, string(encoded)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// SetAccessToken replaces only the access token.
func SetAccessToken(store Store, accessToken string) error {
	if accessToken == "" {
		return apperrors.ErrNoAccessToken
	}
	return store.Set(KeyAccessToken, accessToken)
}

// SetUser replaces only the cached user profile.
func SetUser(store Store, user any) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return store.Set(KeyUser, string(encoded))
}

// DecodeUser decodes the cached profile into out. It reports false when no
// profile is cached.
func DecodeUser(store Store, out any) (bool, error) {
	raw, ok, err := store.Get(KeyUser)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode cached user: %w", err)
	}
	return true, nil
}

// Clear removes every key. All removals are attempted even if one fails.
func Clear(store Store) error {
	var errs []error
	for _, key := range Keys {
		if err := store.Remove(key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Token returns the stored token pair, or ErrNoAccessToken when logged out.
func Token(store Store) (*oauth2.Token, error) {
	sess, err := Load(store)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn() {
		return nil, apperrors.ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// TokenSource adapts a Store to oauth2.TokenSource. Every call reads the
// store again, so a token written by login or refresh is picked up by the
// next request.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

type storeTokenSource struct {
	store Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	return Token(s.store)
}
