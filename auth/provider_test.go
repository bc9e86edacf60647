package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smartsales365/admin-console/apiclient"
	"github.com/smartsales365/admin-console/apiclient/apifake"
	"github.com/smartsales365/admin-console/auth"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
	"github.com/smartsales365/admin-console/session/memstore"
	"github.com/smartsales365/admin-console/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	loginPath   = "/auth/login/"
	logoutPath  = "/auth/logout/"
	refreshPath = "/auth/token/refresh/"
	mePath      = "/administracion/usuarios/me/"

	loginOK = `{"access":"acc-1","refresh":"ref-1","user":{"id":7,"email":"ana@example.com","nombre_completo":"Ana Rojas"}}`
)

func newProvider(t *testing.T, api apiclient.API, store session.Store) *auth.Provider {
	t.Helper()
	p, err := auth.NewProvider(api, store)
	require.NoError(t, err)
	return p
}

func storedKeys(t *testing.T, store session.Store) map[session.Key]string {
	t.Helper()
	out := map[session.Key]string{}
	for _, k := range session.Keys {
		v, ok, err := store.Get(k)
		require.NoError(t, err)
		if ok {
			out[k] = v
		}
	}
	return out
}

func loggedIn(t *testing.T, user string) *memstore.Store {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Set(session.KeyAccessToken, "acc-0"))
	require.NoError(t, store.Set(session.KeyRefreshToken, "ref-0"))
	if user != "" {
		require.NoError(t, store.Set(session.KeyUser, user))
	}
	return store
}

func TestNewProviderValidatesArguments(t *testing.T) {
	_, err := auth.NewProvider(nil, memstore.New())
	require.Error(t, err)
	_, err = auth.NewProvider(apifake.NewFakeAPI(), nil)
	require.Error(t, err)
}

func TestInitialStateIsLoading(t *testing.T) {
	p := newProvider(t, apifake.NewFakeAPI(), memstore.New())
	require.Equal(t, auth.State{Loading: true}, p.State())
}

func TestInitWithoutTokenMakesNoRequests(t *testing.T) {
	api := apifake.NewFakeAPI()
	p := newProvider(t, api, memstore.New())

	p.Init(context.Background())

	require.Equal(t, auth.State{}, p.State())
	require.Empty(t, api.Calls())
}

func TestInitUsesCachedProfile(t *testing.T) {
	api := apifake.NewFakeAPI()
	p := newProvider(t, api, loggedIn(t, `{"id":3,"email":"luis@example.com"}`))

	p.Init(context.Background())

	state := p.State()
	require.True(t, state.IsAuthenticated)
	require.False(t, state.Loading)
	require.Equal(t, 3, state.User.ID)
	require.Empty(t, api.Calls())
}

func TestInitFetchesProfileOnceWhenNotCached(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodGet, mePath, `{"id":9,"email":"eva@example.com"}`)
	p := newProvider(t, api, loggedIn(t, ""))

	p.Init(context.Background())
	p.Init(context.Background())

	state := p.State()
	require.True(t, state.IsAuthenticated)
	require.Equal(t, "eva@example.com", state.User.Email)
	require.Equal(t, 1, api.CallCount(http.MethodGet, mePath))
}

func TestInitLogsOutWhenProfileFetchFails(t *testing.T) {
	api := apifake.NewFakeAPI().
		OnError(http.MethodGet, mePath, &apperrors.APIError{Status: http.StatusInternalServerError}).
		On(http.MethodPost, logoutPath, "")
	store := loggedIn(t, "")
	p := newProvider(t, api, store)

	p.Init(context.Background())

	require.Equal(t, auth.State{}, p.State())
	require.Empty(t, storedKeys(t, store))
	require.Equal(t, 1, api.CallCount(http.MethodPost, logoutPath))
}

func TestLoginStoresSession(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodPost, loginPath, loginOK)
	store := memstore.New()
	p := newProvider(t, api, store)
	p.Init(context.Background())

	var seen []auth.State
	p.Subscribe(func(s auth.State) { seen = append(seen, s) })

	res := p.Login(context.Background(), auth.Credentials{Email: "ana@example.com", Password: "secreto"})

	require.True(t, res.Success)
	require.Empty(t, res.Error)
	require.Equal(t, 7, res.User.ID)

	keys := storedKeys(t, store)
	require.Equal(t, "acc-1", keys[session.KeyAccessToken])
	require.Equal(t, "ref-1", keys[session.KeyRefreshToken])

	var cached users.UserProfile
	require.NoError(t, json.Unmarshal([]byte(keys[session.KeyUser]), &cached))
	require.Equal(t, "Ana Rojas", cached.FullName)

	require.True(t, p.State().IsAuthenticated)
	require.Len(t, seen, 1)
	require.True(t, seen[0].IsAuthenticated)

	var sent auth.Credentials
	require.NoError(t, json.Unmarshal(api.LastCall().Body, &sent))
	require.Equal(t, "ana@example.com", sent.Email)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"backend detail", &apperrors.APIError{Status: http.StatusBadRequest, Detail: "Cuenta desactivada"}, "Cuenta desactivada"},
		{"no detail", &apperrors.APIError{Status: http.StatusBadRequest}, auth.DefaultLoginError},
		{"network", context.DeadlineExceeded, auth.DefaultLoginError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := apifake.NewFakeAPI().OnError(http.MethodPost, loginPath, tt.err)
			store := memstore.New()
			p := newProvider(t, api, store)
			p.Init(context.Background())

			res := p.Login(context.Background(), auth.Credentials{Email: "x@example.com", Password: "bad"})

			require.False(t, res.Success)
			require.Equal(t, tt.message, res.Error)
			require.Empty(t, storedKeys(t, store))
			require.Equal(t, auth.State{}, p.State())
		})
	}
}

func TestRejectedLoginKeepsStoredSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	}))
	t.Cleanup(srv.Close)

	store := loggedIn(t, `{"id":1,"email":"ana@example.com"}`)
	before := storedKeys(t, store)
	client, err := apiclient.New(srv.URL+"/api", 5*time.Second, store)
	require.NoError(t, err)

	p := newProvider(t, client, store)
	unbind := p.Bind(client)
	defer unbind()

	res := p.Login(context.Background(), auth.Credentials{Email: "ana@example.com", Password: "mala"})

	require.False(t, res.Success)
	require.Equal(t, "No active account found with the given credentials", res.Error)
	require.Equal(t, before, storedKeys(t, store))
	require.Equal(t, auth.State{Loading: true}, p.State())
}

func TestLoginWithoutRefreshTokenStoresNoRefreshKey(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodPost, loginPath, `{"access":"acc-1","user":{"id":1,"email":"a@b.co"}}`)
	store := memstore.New()
	p := newProvider(t, api, store)

	require.True(t, p.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "x"}).Success)

	keys := storedKeys(t, store)
	require.Contains(t, keys, session.KeyAccessToken)
	require.NotContains(t, keys, session.KeyRefreshToken)
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	api := apifake.NewFakeAPI().OnError(http.MethodPost, logoutPath, &apperrors.APIError{Status: http.StatusBadGateway})
	store := loggedIn(t, `{"id":1}`)
	p := newProvider(t, api, store)
	p.Init(context.Background())
	require.True(t, p.State().IsAuthenticated)

	p.Logout(context.Background())

	require.Equal(t, auth.State{}, p.State())
	require.Empty(t, storedKeys(t, store))

	var body map[string]string
	require.NoError(t, json.Unmarshal(api.LastCall().Body, &body))
	require.Equal(t, "ref-0", body["refresh"])
}

func TestRefreshTokenUpdatesAccessTokenOnly(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodPost, refreshPath, `{"access":"acc-2"}`)
	store := loggedIn(t, `{"id":1}`)
	p := newProvider(t, api, store)

	tok, err := p.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "acc-2", tok.AccessToken)

	keys := storedKeys(t, store)
	require.Equal(t, "acc-2", keys[session.KeyAccessToken])
	require.Equal(t, "ref-0", keys[session.KeyRefreshToken])
	require.Equal(t, `{"id":1}`, keys[session.KeyUser])
}

func TestRefreshTokenWithoutRefreshToken(t *testing.T) {
	api := apifake.NewFakeAPI()
	p := newProvider(t, api, memstore.New())

	_, err := p.RefreshToken(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	require.Empty(t, api.Calls())
}

func TestRefreshTokenPropagatesBackendError(t *testing.T) {
	api := apifake.NewFakeAPI().OnError(http.MethodPost, refreshPath, &apperrors.APIError{Status: http.StatusBadRequest})
	store := loggedIn(t, "")
	p := newProvider(t, api, store)

	_, err := p.RefreshToken(context.Background())
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	require.Equal(t, "acc-0", storedKeys(t, store)[session.KeyAccessToken])
}

func TestProfileRefreshesCachedUser(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodGet, mePath, `{"id":1,"email":"nuevo@example.com"}`)
	store := loggedIn(t, `{"id":1,"email":"viejo@example.com"}`)
	p := newProvider(t, api, store)

	_, err := p.Profile(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	p.Init(context.Background())
	user, err := p.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "nuevo@example.com", user.Email)
	require.Equal(t, "nuevo@example.com", p.State().User.Email)
	require.Contains(t, storedKeys(t, store)[session.KeyUser], "nuevo@example.com")
}

func TestUnsubscribe(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodPost, logoutPath, "")
	p := newProvider(t, api, loggedIn(t, `{"id":1}`))

	calls := 0
	unsubscribe := p.Subscribe(func(auth.State) { calls++ })
	p.Init(context.Background())
	unsubscribe()
	p.Logout(context.Background())

	require.Equal(t, 1, calls)
}

func TestBackendUnauthorizedResetsState(t *testing.T) {
	var meCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api" + mePath:
			meCalls.Add(1)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":5,"email":"rosa@example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token inválido"}`))
		}
	}))
	t.Cleanup(srv.Close)

	store := loggedIn(t, "")
	client, err := apiclient.New(srv.URL+"/api", 5*time.Second, store)
	require.NoError(t, err)

	p := newProvider(t, client, store)
	unbind := p.Bind(client)
	defer unbind()

	p.Init(context.Background())
	require.True(t, p.State().IsAuthenticated)
	require.EqualValues(t, 1, meCalls.Load())

	err = client.Get(context.Background(), "/ventas/", nil, nil)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.Equal(t, auth.State{}, p.State())
	require.Empty(t, storedKeys(t, store))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := auth.TokenExpiry(raw)
	require.True(t, ok)
	require.True(t, exp.Equal(got))

	_, ok = auth.TokenExpiry("not-a-jwt")
	require.False(t, ok)

	store := memstore.New()
	require.NoError(t, session.SaveLogin(store, &oauth2.Token{AccessToken: raw}, map[string]any{"id": 1}))
	p := newProvider(t, apifake.NewFakeAPI(), store)
	got, ok = p.AccessTokenExpiry()
	require.True(t, ok)
	require.True(t, exp.Equal(got))
}
