package apifake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/smartsales365/admin-console/apiclient"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
)

var _ apiclient.API = (*FakeAPI)(nil)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   json.RawMessage
}

type reply struct {
	body string
	err  error
}

// FakeAPI answers requests with canned replies and records every call.
// Unregistered routes answer 404.
type FakeAPI struct {
	lock    sync.Mutex
	replies map[string]reply
	calls   []Call
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		replies: make(map[string]reply),
	}
}

// On registers a JSON reply for method and path.
func (f *FakeAPI) On(method, path, body string) *FakeAPI {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.replies[method+" "+path] = reply{body: body}
	return f
}

// OnError registers an error reply for method and path.
func (f *FakeAPI) OnError(method, path string, err error) *FakeAPI {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.replies[method+" "+path] = reply{err: err}
	return f
}

func (f *FakeAPI) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts calls to method and path.
func (f *FakeAPI) CallCount(method, path string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call, or the zero Call.
func (f *FakeAPI) LastCall() Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.calls) == 0 {
		return Call{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *FakeAPI) Get(ctx context.Context, path string, query url.Values, out any) error {
	return f.do(ctx, http.MethodGet, path, query, nil, out)
}

func (f *FakeAPI) Post(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, http.MethodPost, path, nil, body, out)
}

func (f *FakeAPI) Put(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, http.MethodPut, path, nil, body, out)
}

func (f *FakeAPI) Patch(ctx context.Context, path string, body, out any) error {
	return f.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (f *FakeAPI) Delete(ctx context.Context, path string, out any) error {
	return f.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (f *FakeAPI) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := Call{Method: method, Path: path, Query: query}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		call.Body = encoded
	}

	f.lock.Lock()
	f.calls = append(f.calls, call)
	r, ok := f.replies[method+" "+path]
	f.lock.Unlock()

	if !ok {
		return &apperrors.APIError{Status: http.StatusNotFound, Method: method, Path: path}
	}
	if r.err != nil {
		return r.err
	}
	if out == nil || r.body == "" {
		return nil
	}
	return json.Unmarshal([]byte(r.body), out)
}
