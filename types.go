package authclient

import "fmt"

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore holds the persisted bearer credential. The absence of an
// access token is the sole signal of "no session"; implementations never
// track expiry and treat the token as opaque.
type CredentialStore interface {
	Save(accessToken, refreshToken string) error
	Load() (*Credential, error)
	Clear() error
	HasAccessToken() bool
}

// Navigator performs navigation on behalf of the session core. The handler
// wired to credential invalidation must discard all in-memory state (a hard
// navigation in browser-hosted shells) so a stale authenticated view is not
// reachable via history.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) {
	if f != nil {
		f(path)
	}
}

// SessionInvalidatedHandler is invoked by the Transport after a 401 has
// cleared the credential store.
type SessionInvalidatedHandler func()

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetLoginPath() string
	GetSignInRoute() string
	GetLandingRoute() string
	GetPublicRoutes() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHCLIENT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
