package authclient

import (
	"strings"
)

// GuardAction is the route guard's verdict for a navigation target.
type GuardAction string

const (
	// GuardActionLoading means the session has not settled; render a
	// neutral affordance and perform no navigation.
	GuardActionLoading GuardAction = "loading"
	// GuardActionRender means the target may render.
	GuardActionRender GuardAction = "render"
	// GuardActionRedirect means nothing renders for this pass and
	// navigation to RedirectTo follows.
	GuardActionRedirect GuardAction = "redirect"
)

// GuardDecision is the outcome of evaluating a navigation target.
type GuardDecision struct {
	Action     GuardAction
	RedirectTo string
}

// RouteGuard gates rendering on session state and a fixed allow-list of
// public paths. Protected content is never rendered while unauthenticated:
// the guard redirects instead of optimistically rendering first.
type RouteGuard struct {
	session     *SessionManager
	public      map[string]struct{}
	signInRoute string
	logger      Logger
}

// RouteGuardOption customizes RouteGuard construction.
type RouteGuardOption func(*RouteGuard)

// WithGuardLogger overrides the logger.
func WithGuardLogger(logger Logger) RouteGuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewRouteGuard(session *SessionManager, cfg Config, opts ...RouteGuardOption) *RouteGuard {
	g := &RouteGuard{
		session:     session,
		signInRoute: cfg.GetSignInRoute(),
		public:      map[string]struct{}{},
		logger:      defLogger{},
	}

	for _, route := range cfg.GetPublicRoutes() {
		g.public[normalizePath(route)] = struct{}{}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Evaluate decides whether the current navigation target may render.
// Allow-listed paths always render regardless of auth state; everything
// else requires an authenticated session once startup has settled.
func (g *RouteGuard) Evaluate(path string) GuardDecision {
	select {
	case <-g.session.Settled():
	default:
		return GuardDecision{Action: GuardActionLoading}
	}

	if g.IsPublic(path) {
		return GuardDecision{Action: GuardActionRender}
	}

	if g.session.IsAuthenticated() {
		return GuardDecision{Action: GuardActionRender}
	}

	g.logger.Debug("guard rejected path %s", path)
	return GuardDecision{Action: GuardActionRedirect, RedirectTo: g.signInRoute}
}

// IsPublic reports whether a path is reachable without a session.
func (g *RouteGuard) IsPublic(path string) bool {
	_, ok := g.public[normalizePath(path)]
	return ok
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
