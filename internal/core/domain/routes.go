package domain

// Client route paths the gates decide over. The gates never navigate; they
// hand one of these back to the caller as a redirect target.
const (
	PathLogin        = "/login"
	PathUnauthorized = "/unauthorized"

	PathOnboarding    = "/pharmacy/onboarding"
	PathPendingReview = "/pharmacy/pending-approval"
	PathRejected      = "/pharmacy/rejected"

	PathDashboard = "/pharmacy/dashboard"
	PathInventory = "/pharmacy/inventory"
	PathOrders    = "/pharmacy/orders"
	PathRequests  = "/pharmacy/requests"
	PathCustomers = "/pharmacy/customers"
	PathAnalytics = "/pharmacy/analytics"
	PathReports   = "/pharmacy/reports"
	PathSettings  = "/pharmacy/settings"
)

// DecisionState is the outcome class of a gate evaluation.
type DecisionState int

const (
	// DecisionAwaiting means session restore has not settled; render nothing
	// conclusive yet.
	DecisionAwaiting DecisionState = iota
	DecisionAllowed
	DecisionRedirect
)

// Decision is a pure authorization outcome. It is recomputed on every
// navigation and never persisted.
type Decision struct {
	State      DecisionState
	RedirectTo string
}

// Allowed reports whether navigation may proceed.
func (d Decision) Allowed() bool { return d.State == DecisionAllowed }
