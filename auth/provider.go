// Package auth owns the login lifecycle of the console: the startup session
// check, login, logout and token refresh. All changes to the auth state go
// through a Provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/apiclient"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
	"github.com/smartsales365/admin-console/users"
	"golang.org/x/oauth2"
)

const (
	pathLogin   = "/auth/login/"
	pathLogout  = "/auth/logout/"
	pathRefresh = "/auth/token/refresh/"
)

// InvalidationSource announces that the backend rejected the stored
// session. *apiclient.Client is one.
type InvalidationSource interface {
	OnSessionInvalidated(fn func()) (unsubscribe func())
}

// Provider holds the auth state and the four operations that change it:
// Init, Login, Logout and RefreshToken.
type Provider struct {
	api      apiclient.API
	store    session.Store
	profiles *users.Service

	// op serialises the operations; mu guards state and subscribers only,
	// so invalidation callbacks never wait on a network call.
	op          sync.Mutex
	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int
	initOnce    sync.Once
}

func NewProvider(api apiclient.API, store session.Store) (*Provider, error) {
	if api == nil {
		return nil, errors.New("[NewProvider] api is required")
	}
	if store == nil {
		return nil, errors.New("[NewProvider] session store is required")
	}
	return &Provider{
		api:         api,
		store:       store,
		profiles:    users.NewService(api),
		state:       initialState(),
		subscribers: make(map[int]func(State)),
	}, nil
}

// Bind resets the provider to logged out whenever src reports that the
// session was invalidated.
func (p *Provider) Bind(src InvalidationSource) (unbind func()) {
	return src.OnSessionInvalidated(func() {
		log.Info().Msg("session invalidated by backend")
		p.setState(State{})
	})
}

// State returns a snapshot of the current state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Subscribe calls fn after every state change. The returned function
// unsubscribes.
func (p *Provider) Subscribe(fn func(State)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

func (p *Provider) setState(s State) {
	p.mu.Lock()
	p.state = s
	subscribers := make([]func(State), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subscribers = append(subscribers, fn)
	}
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(s)
	}
}

// Init runs the startup session check. Only the first call does anything.
// With no stored access token the provider ends logged out. Otherwise the
// cached profile is used, or fetched from the backend when none is cached.
// Any failure logs out. Loading is false when Init returns.
func (p *Provider) Init(ctx context.Context) {
	p.initOnce.Do(func() {
		p.op.Lock()
		defer p.op.Unlock()
		p.checkSession(ctx)
	})
}

func (p *Provider) checkSession(ctx context.Context) {
	sess, err := session.Load(p.store)
	if err != nil {
		log.Error().Err(err).Msg("failed to read stored session")
		p.logout(ctx)
		return
	}
	if !sess.LoggedIn() {
		p.setState(State{})
		return
	}

	user, err := p.startupProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("stored session could not be verified, logging out")
		p.logout(ctx)
		return
	}
	p.setState(State{User: user, IsAuthenticated: true})
}

// startupProfile prefers the cached profile and only asks the backend when
// there is none.
func (p *Provider) startupProfile(ctx context.Context) (*users.UserProfile, error) {
	var cached users.UserProfile
	ok, err := session.DecodeUser(p.store, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable cached profile")
	}
	if ok {
		return &cached, nil
	}
	return p.profiles.Me(ctx)
}

// Login exchanges credentials for a session. It never returns an error:
// failures come back as a LoginResult with a displayable message and leave
// both the store and the state untouched.
func (p *Provider) Login(ctx context.Context, creds Credentials) LoginResult {
	p.op.Lock()
	defer p.op.Unlock()

	// A rejected login says nothing about a session that may already be
	// stored, so its 401 must not clear it.
	var resp loginResponse
	if err := p.api.Post(apiclient.KeepSessionOn401(ctx), pathLogin, creds, &resp); err != nil {
		log.Info().Err(err).Str("email", creds.Email).Msg("login rejected")
		return LoginResult{Error: loginErrorMessage(err)}
	}
	if resp.Access == "" || resp.User == nil {
		log.Error().Str("email", creds.Email).Msg("login response without token or user")
		return LoginResult{Error: DefaultLoginError}
	}

	tok := &oauth2.Token{AccessToken: resp.Access, RefreshToken: resp.Refresh, TokenType: "Bearer"}
	if err := session.SaveLogin(p.store, tok, resp.User); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		if clearErr := session.Clear(p.store); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to roll back partial session")
		}
		return LoginResult{Error: DefaultLoginError}
	}

	p.setState(State{User: resp.User, IsAuthenticated: true})
	log.Info().Int("user_id", resp.User.ID).Msg("logged in")
	return LoginResult{Success: true, User: resp.User}
}

func loginErrorMessage(err error) string {
	if detail := apperrors.Detail(err); detail != "" {
		return detail
	}
	return DefaultLoginError
}

// Logout tells the backend, then always clears the local session. A failed
// backend call is logged and otherwise ignored.
func (p *Provider) Logout(ctx context.Context) {
	p.op.Lock()
	defer p.op.Unlock()
	p.logout(ctx)
}

func (p *Provider) logout(ctx context.Context) {
	refresh, _, err := p.store.Get(session.KeyRefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read refresh token for logout")
	}

	var body any
	if refresh != "" {
		body = refreshRequest{Refresh: refresh}
	}
	if err := p.api.Post(ctx, pathLogout, body, nil); err != nil {
		log.Warn().Err(err).Msg("backend logout failed")
	}

	if err := session.Clear(p.store); err != nil {
		log.Error().Err(err).Msg("failed to clear session")
	}
	p.setState(State{})
}

// RefreshToken trades the stored refresh token for a new access token.
// Only the access token is written back. Errors are returned to the caller;
// nothing is retried.
func (p *Provider) RefreshToken(ctx context.Context) (*oauth2.Token, error) {
	p.op.Lock()
	defer p.op.Unlock()

	refresh, ok, err := p.store.Get(session.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	if !ok || refresh == "" {
		return nil, apperrors.ErrNoRefreshToken
	}

	var resp refreshResponse
	if err := p.api.Post(ctx, pathRefresh, refreshRequest{Refresh: refresh}, &resp); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if resp.Access == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "refresh token: empty access token")
	}
	if err := session.SetAccessToken(p.store, resp.Access); err != nil {
		return nil, fmt.Errorf("store refreshed access token: %w", err)
	}

	log.Debug().Msg("access token refreshed")
	return &oauth2.Token{AccessToken: resp.Access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// Profile fetches the current profile from the backend and replaces the
// cached copy.
func (p *Provider) Profile(ctx context.Context) (*users.UserProfile, error) {
	p.op.Lock()
	defer p.op.Unlock()

	if !p.State().IsAuthenticated {
		return nil, apperrors.ErrNotAuthenticated
	}
	user, err := p.profiles.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := session.SetUser(p.store, user); err != nil {
		return nil, err
	}
	p.setState(State{User: user, IsAuthenticated: true})
	return user, nil
}

// AccessTokenExpiry reports the exp claim of the stored access token when
// the token is a JWT. The signature is not checked; the result is for
// display only.
func (p *Provider) AccessTokenExpiry() (time.Time, bool) {
	raw, ok, err := p.store.Get(session.KeyAccessToken)
	if err != nil || !ok {
		return time.Time{}, false
	}
	return TokenExpiry(raw)
}

// TokenExpiry decodes the exp claim of an unverified JWT.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
