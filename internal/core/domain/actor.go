package domain

// Role identifies the kind of actor driving authorization decisions.
type Role string

const (
	RoleGuest            Role = "guest"
	RolePatient          Role = "patient"
	RolePharmacyOperator Role = "pharmacy_operator"
	RoleAdmin            Role = "admin"
)

// WorkflowStatus is the pharmacy approval lifecycle state. It is meaningful
// only for RolePharmacyOperator; every other role carries StatusNone.
type WorkflowStatus string

const (
	StatusNone               WorkflowStatus = "none"
	StatusOnboardingRequired WorkflowStatus = "onboarding_required"
	StatusPending            WorkflowStatus = "pending"
	StatusRejected           WorkflowStatus = "rejected"
	StatusApproved           WorkflowStatus = "approved"
)

// validStatusTransitions defines the allowed workflow state machine moves.
// REJECTED returns to ONBOARDING_REQUIRED only through a server-confirmed
// reset; APPROVED is terminal.
var validStatusTransitions = map[WorkflowStatus][]WorkflowStatus{
	StatusOnboardingRequired: {StatusPending},
	StatusPending:            {StatusApproved, StatusRejected},
	StatusRejected:           {StatusOnboardingRequired},
}

// CanTransitionTo reports whether a workflow move from s to next is valid.
func (s WorkflowStatus) CanTransitionTo(next WorkflowStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Actor models the authenticated identity behind a client session.
type Actor struct {
	ID             string         `json:"id"`
	Role           Role           `json:"role"`
	WorkflowStatus WorkflowStatus `json:"workflow_status"`
	DisplayName    string         `json:"display_name"`
	Email          string         `json:"email,omitempty"`
}

// Normalize enforces the actor invariants: a missing role becomes guest and
// the workflow status collapses to none for every role except pharmacy
// operator. An operator without a status starts at onboarding.
func (a *Actor) Normalize() {
	if a.Role == "" {
		a.Role = RoleGuest
	}
	if a.Role != RolePharmacyOperator {
		a.WorkflowStatus = StatusNone
		return
	}
	if a.WorkflowStatus == "" {
		a.WorkflowStatus = StatusNone
	}
}

// IsPharmacyOperator reports whether the actor is subject to the workflow gate.
func (a *Actor) IsPharmacyOperator() bool {
	return a != nil && a.Role == RolePharmacyOperator
}
