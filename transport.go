package authclient

import (
	"net/http"
)

// Transport is an http.RoundTripper that attaches the stored access token
// to every outgoing request and reacts to server-signaled authentication
// rejections.
//
// The request phase cannot fail: an empty store degrades the call to an
// unauthenticated request. The response phase clears the store on a 401 and
// notifies the SessionInvalidatedHandler, then hands the rejected response
// back to the caller so page-local handling still executes.
type Transport struct {
	// Base is the underlying RoundTripper to use for actual requests.
	// If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	store         CredentialStore
	onInvalidated SessionInvalidatedHandler
	logger        Logger
}

// TransportOption customizes Transport construction.
type TransportOption func(*Transport)

// WithTransportBase sets the underlying RoundTripper.
func WithTransportBase(base http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.Base = base
	}
}

// WithTransportLogger overrides the logger used for store failures.
func WithTransportLogger(logger Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSessionInvalidatedHandler sets the callback invoked after a 401 has
// cleared the credential store. The handler owns the hard navigation back
// to the sign-in entry point.
func WithSessionInvalidatedHandler(handler SessionInvalidatedHandler) TransportOption {
	return func(t *Transport) {
		t.onInvalidated = handler
	}
}

func NewTransport(store CredentialStore, opts ...TransportOption) *Transport {
	t := &Transport{
		store:  store,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// SetSessionInvalidatedHandler wires the invalidation callback after
// construction. SessionManager uses this to attach itself to a transport it
// did not create.
func (t *Transport) SetSessionInvalidatedHandler(handler SessionInvalidatedHandler) {
	t.onInvalidated = handler
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if cred := t.loadCredential(); cred != nil {
		// RoundTrippers must not mutate the caller's request
		clone := req.Clone(req.Context())
		clone.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		req = clone
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.invalidateSession(req)
	}

	return resp, nil
}

func (t *Transport) loadCredential() *Credential {
	if t.store == nil {
		return nil
	}

	cred, err := t.store.Load()
	if err != nil {
		// degrade to an unauthenticated request
		t.logger.Error("transport credential load error: %v", err)
		return nil
	}
	return cred
}

func (t *Transport) invalidateSession(req *http.Request) {
	t.logger.Info("session invalidated by server: %s", req.URL.Path)

	if t.store != nil {
		if err := t.store.Clear(); err != nil {
			t.logger.Error("transport credential clear error: %v", err)
		}
	}

	if t.onInvalidated != nil {
		t.onInvalidated()
	}
}
