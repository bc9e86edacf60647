package apiclient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"golang.org/x/oauth2"
)

const headerRequestID = "X-Request-ID"

// bearerTransport sets the Authorization header from the token source on
// every outgoing request. Unlike oauth2.Transport it lets the request through
// unauthenticated when there is no token.
type bearerTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil && !errors.Is(err, apperrors.ErrNoAccessToken) {
		return nil, err
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	if tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(out)
	}
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}
	return t.base.RoundTrip(out)
}
