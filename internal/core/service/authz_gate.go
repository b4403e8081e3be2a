package service

import (
	"github.com/pharmalink/portal-client/internal/core/domain"
)

// AuthorizationGate decides whether an actor may reach a route requiring a
// given role set. It is pure: always terminates with a decision, never
// navigates, never mutates session state.
type AuthorizationGate struct{}

func NewAuthorizationGate() *AuthorizationGate {
	return &AuthorizationGate{}
}

// Decide evaluates a navigation attempt.
//
// Order matters: a pending restore yields awaiting (render nothing
// conclusive); no actor redirects to login; a role in the set allows; an
// admin is allowed everywhere except pharmacy-operator routes, which are
// gated by workflow status rather than administrative privilege.
func (g *AuthorizationGate) Decide(restorePending bool, actor *domain.Actor, required []domain.Role) domain.Decision {
	if restorePending {
		return domain.Decision{State: domain.DecisionAwaiting}
	}
	if actor == nil {
		return domain.Decision{State: domain.DecisionRedirect, RedirectTo: domain.PathLogin}
	}

	includesOperator := false
	for _, role := range required {
		if actor.Role == role {
			return domain.Decision{State: domain.DecisionAllowed}
		}
		if role == domain.RolePharmacyOperator {
			includesOperator = true
		}
	}

	if actor.Role == domain.RoleAdmin && !includesOperator {
		return domain.Decision{State: domain.DecisionAllowed}
	}

	return domain.Decision{State: domain.DecisionRedirect, RedirectTo: domain.PathUnauthorized}
}
