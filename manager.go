package authclient

import (
	"context"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// SessionState identifies where the session is in its lifecycle.
type SessionState string

const (
	// StateUnknown is the pre-settle state; no render decision should be
	// made against it.
	StateUnknown SessionState = "unknown"
	// StateUnauthenticated means the store holds no access token.
	StateUnauthenticated SessionState = "unauthenticated"
	// StateAuthenticating means a login call is in flight.
	StateAuthenticating SessionState = "authenticating"
	// StateAuthenticated always carries a successfully decoded Identity.
	StateAuthenticated SessionState = "authenticated"
	// StateError carries the message of a failed login attempt. It does not
	// revert on its own; the caller must retry.
	StateError SessionState = "error"
)

// LoginRequest is the payload sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs before the login call is issued.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse is the expected success payload of the login endpoint. A
// 2xx body without an access token is treated as a malformed response.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// SessionManager owns the authenticated-identity state machine: login,
// logout, restore-on-startup, and the error surface feature pages consume.
// It is constructed once at process start and passed by reference to
// consumers; feature code never touches ambient globals.
type SessionManager struct {
	client *Client
	store  CredentialStore
	cfg    Config
	nav    Navigator
	logger Logger

	mu        sync.RWMutex
	state     SessionState
	identity  *Identity
	lastError string

	startOnce sync.Once
	settled   chan struct{}

	transitions map[SessionState]map[SessionState]struct{}
}

// SessionManagerOption customizes SessionManager construction.
type SessionManagerOption func(*SessionManager)

// WithNavigator sets the Navigator used after login, logout, and session
// invalidation.
func WithNavigator(nav Navigator) SessionManagerOption {
	return func(m *SessionManager) {
		if nav != nil {
			m.nav = nav
		}
	}
}

// WithSessionLogger overrides the logger.
func WithSessionLogger(logger Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewSessionManager(client *Client, store CredentialStore, cfg Config, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		client:  client,
		store:   store,
		cfg:     cfg,
		nav:     NavigatorFunc(nil),
		logger:  defLogger{},
		state:   StateUnknown,
		settled: make(chan struct{}),
		transitions: map[SessionState]map[SessionState]struct{}{
			StateUnknown: {
				StateAuthenticated:   {},
				StateUnauthenticated: {},
				StateAuthenticating:  {},
			},
			StateUnauthenticated: {
				StateAuthenticating: {},
			},
			StateAuthenticating: {
				StateAuthenticated:   {},
				StateUnauthenticated: {},
				StateError:           {},
			},
			StateAuthenticated: {
				StateAuthenticating:  {},
				StateUnauthenticated: {},
			},
			StateError: {
				StateAuthenticating:  {},
				StateUnauthenticated: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	// the transport owns 401 handling; attach unless the caller wired its own
	if client != nil {
		if t := client.Transport(); t != nil && t.onInvalidated == nil {
			t.SetSessionInvalidatedHandler(m.sessionInvalidated)
		}
	}

	return m
}

// Start restores a persisted credential. It runs exactly once per process
// session and settles even on failure: a missing or undecodable credential
// yields Unauthenticated, never an error surface.
func (m *SessionManager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		defer close(m.settled)

		cred, err := m.store.Load()
		if err != nil {
			m.logger.Error("session restore load error: %v", err)
			m.setState(StateUnauthenticated, nil, "")
			return
		}

		if cred == nil {
			m.setState(StateUnauthenticated, nil, "")
			return
		}

		identity, err := cred.Identity()
		if err != nil {
			// a credential we cannot decode is discarded, not reported
			m.logger.Error("session restore decode error: %v", err)
			if err := m.store.Clear(); err != nil {
				m.logger.Error("session restore clear error: %v", err)
			}
			m.setState(StateUnauthenticated, nil, "")
			return
		}

		m.logger.Debug("session restored for subject %s", identity.SubjectID)
		m.setState(StateAuthenticated, identity, "")
	})
}

// Settled is closed once the startup restore has completed. Route guards
// must wait on it before their first render decision.
func (m *SessionManager) Settled() <-chan struct{} {
	return m.settled
}

// WaitUntilSettled blocks until startup has settled or ctx is done.
func (m *SessionManager) WaitUntilSettled(ctx context.Context) error {
	select {
	case <-m.settled:
		return nil
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "session settle interrupted")
	}
}

// Login exchanges email and password for a bearer credential. On success
// the credential is persisted, the identity decoded, and the navigator sent
// to the landing route. On any failure the state is Error with a message
// fit for direct display; the store is left untouched.
//
// Concurrent invocations are not serialized; the triggering control should
// be disabled while IsLoading reports true.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	payload := LoginRequest{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		m.setState(StateError, nil, err.Error())
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	m.setState(StateAuthenticating, nil, "")

	result := LoginResponse{}
	if err := m.client.Post(ctx, m.cfg.GetLoginPath(), payload, &result); err != nil {
		return m.failLogin(markLoginRejected(err))
	}

	if result.AccessToken == "" {
		return m.failLogin(ErrMalformedLoginResponse)
	}

	identity, err := DecodeIdentity(result.AccessToken)
	if err != nil {
		return m.failLogin(err)
	}

	if err := m.store.Save(result.AccessToken, result.RefreshToken); err != nil {
		return m.failLogin(err)
	}

	m.setState(StateAuthenticated, identity, "")
	m.nav.NavigateTo(m.cfg.GetLandingRoute())

	return nil
}

// Logout clears the credential and forces navigation to the sign-in entry
// point. It always succeeds.
func (m *SessionManager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("logout clear error: %v", err)
	}

	m.setState(StateUnauthenticated, nil, "")
	m.nav.NavigateTo(m.cfg.GetSignInRoute())
}

// State returns the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the decoded identity, nil unless Authenticated.
func (m *SessionManager) Identity() *Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// IsAuthenticated reports whether the session carries a decoded identity.
func (m *SessionManager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// IsLoading reports whether the session is settling or a login is in flight.
func (m *SessionManager) IsLoading() bool {
	state := m.State()
	return state == StateUnknown || state == StateAuthenticating
}

// Err returns the message of the last failed login, empty otherwise.
func (m *SessionManager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

func (m *SessionManager) failLogin(err error) error {
	message := LoginErrorMessage(err)
	m.setState(StateError, nil, message)

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		m.logger.Error("login failed: %s %s", message, print.MaybePrettyJSON(richErr.Metadata))
	} else {
		m.logger.Error("login failed: %s: %v", message, err)
	}

	return err
}

// markLoginRejected retags a non-2xx answer from the login endpoint with
// the login taxonomy entry, carrying the server metadata over. Transport
// and decode failures pass through untouched.
func markLoginRejected(err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return err
	}
	if _, ok := richErr.Metadata["status"]; !ok {
		return err
	}

	rejected := goerrors.New(ErrLoginRejected.Message, ErrLoginRejected.Category).
		WithTextCode(ErrLoginRejected.TextCode).
		WithCode(goerrors.CodeUnauthorized)
	return rejected.WithMetadata(richErr.Metadata)
}

// sessionInvalidated is the transport's 401 callback: the store has already
// been cleared, so only the in-memory state and navigation remain.
func (m *SessionManager) sessionInvalidated() {
	m.setState(StateUnauthenticated, nil, "")
	m.nav.NavigateTo(m.cfg.GetSignInRoute())
}

func (m *SessionManager) setState(target SessionState, identity *Identity, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.canTransition(m.state, target) {
		// transitions are driven by distinct user and network events; an
		// unexpected one is logged, then applied last-write-wins
		m.logger.Debug("unexpected session transition from %s to %s", m.state, target)
	}

	m.state = target
	m.identity = identity
	m.lastError = message
}

func (m *SessionManager) canTransition(from, to SessionState) bool {
	if from == to {
		return true
	}
	if allowed, ok := m.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
