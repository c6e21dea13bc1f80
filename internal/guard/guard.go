// Package guard decides whether a role-gated view may be rendered for the
// current session. The decision itself is pure; middleware.go applies it
// to HTTP.
package guard

import (
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/session"
)

// Outcome is what should happen to a request for a gated view.
type Outcome int

const (
	// OutcomeWait renders nothing while the session is still loading,
	// preventing a redirect flash.
	OutcomeWait Outcome = iota
	// OutcomeLogin redirects to the login view, preserving the requested
	// location for post-login return.
	OutcomeLogin
	// OutcomeHome bounces an authenticated user whose role is not allowed.
	// Deliberately indistinguishable from the public home view so routes
	// do not leak which roles they accept.
	OutcomeHome
	// OutcomeAllow renders the protected content.
	OutcomeAllow
)

// Decision pairs an outcome with the location to return to after login.
type Decision struct {
	Outcome  Outcome
	ReturnTo string
}

// Decide evaluates (session, required roles, requested location). An empty
// required set gates on authentication only.
func Decide(sess session.Session, required []models.Role, location string) Decision {
	if sess.Loading {
		return Decision{Outcome: OutcomeWait}
	}
	if !sess.Authenticated() {
		return Decision{Outcome: OutcomeLogin, ReturnTo: location}
	}
	if len(required) == 0 {
		return Decision{Outcome: OutcomeAllow}
	}

	switch role := sess.Identity.Role; role {
	case models.RoleFounder, models.RoleInvestor, models.RoleAdmin:
		for _, r := range required {
			if r == role {
				return Decision{Outcome: OutcomeAllow}
			}
		}
		return Decision{Outcome: OutcomeHome}
	case models.RoleAnonymous:
		return Decision{Outcome: OutcomeLogin, ReturnTo: location}
	default:
		// Unknown role values cannot authenticate into any gated view.
		return Decision{Outcome: OutcomeLogin, ReturnTo: location}
	}
}
