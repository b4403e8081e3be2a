package service

import (
	"strings"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// allowedPrefixes lists the navigable path prefixes per workflow status.
var allowedPrefixes = map[domain.WorkflowStatus][]string{
	domain.StatusOnboardingRequired: {domain.PathOnboarding},
	domain.StatusPending:            {domain.PathPendingReview},
	domain.StatusRejected:           {domain.PathRejected},
	domain.StatusApproved: {
		domain.PathDashboard,
		domain.PathInventory,
		domain.PathOrders,
		domain.PathRequests,
		domain.PathCustomers,
		domain.PathAnalytics,
		domain.PathReports,
		domain.PathSettings,
	},
}

// canonicalDestination is the single path each status redirects to when the
// current path is disallowed. Never a generic error page.
var canonicalDestination = map[domain.WorkflowStatus]string{
	domain.StatusOnboardingRequired: domain.PathOnboarding,
	domain.StatusPending:            domain.PathPendingReview,
	domain.StatusRejected:           domain.PathRejected,
	domain.StatusApproved:           domain.PathDashboard,
}

// WorkflowStatusGate restricts a pharmacy operator's navigable paths to those
// valid for its approval status. Every other role passes through untouched.
type WorkflowStatusGate struct{}

func NewWorkflowStatusGate() *WorkflowStatusGate {
	return &WorkflowStatusGate{}
}

// Evaluate checks a navigation attempt against the actor's workflow status.
func (g *WorkflowStatusGate) Evaluate(actor *domain.Actor, path string) domain.Decision {
	if !actor.IsPharmacyOperator() {
		return domain.Decision{State: domain.DecisionAllowed}
	}

	status := actor.WorkflowStatus
	// A pharmacy operator without a status should not occur, but if it does
	// the actor lands on onboarding rather than a blank screen.
	if status == domain.StatusNone || status == "" {
		status = domain.StatusOnboardingRequired
	}

	for _, prefix := range allowedPrefixes[status] {
		if strings.HasPrefix(path, prefix) {
			return domain.Decision{State: domain.DecisionAllowed}
		}
	}

	return domain.Decision{
		State:      domain.DecisionRedirect,
		RedirectTo: canonicalDestination[status],
	}
}
