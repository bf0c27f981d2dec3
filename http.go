package authclient

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// DefaultIdentityKey is the Locals key the guard middleware stores the
// identity under.
const DefaultIdentityKey = "identity"

// Protected adapts the guard into go-router middleware for dashboards whose
// shell is server-rendered. It blocks until the session settles, applies
// the same allow-list policy as Evaluate, and stores the identity in both
// the router locals and the request context for downstream handlers.
func (g *RouteGuard) Protected() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if err := g.session.WaitUntilSettled(ctx.Context()); err != nil {
				return err
			}

			decision := g.Evaluate(ctx.Path())
			if decision.Action == GuardActionRedirect {
				statusCode := http.StatusSeeOther
				if ctx.Method() == string(router.GET) {
					statusCode = http.StatusFound
				}
				return ctx.Redirect(decision.RedirectTo, statusCode)
			}

			if identity := g.session.Identity(); identity != nil {
				ctx.Locals(DefaultIdentityKey, identity)
				ctx.SetContext(WithIdentity(ctx.Context(), identity))
			}

			return ctx.Next()
		}
	}
}
