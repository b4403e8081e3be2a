package ports

import (
	"context"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// LoginResult is the payload returned by a successful authentication call.
type LoginResult struct {
	Actor       domain.Actor
	AccessToken string
}

// SessionAPI is the marketplace authentication surface the client consumes.
type SessionAPI interface {
	// Login exchanges credentials for an actor and an access token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Logout invalidates the token server-side. Best effort: the client
	// clears local state regardless of the outcome.
	Logout(ctx context.Context, token string) error

	// CurrentActor validates the token and returns the server's view of the
	// authenticated actor.
	CurrentActor(ctx context.Context, token string) (*domain.Actor, error)
}

// WorkflowAPI exposes the pharmacy approval lifecycle endpoints.
type WorkflowAPI interface {
	// FetchStatus re-reads only the workflow-relevant actor fields.
	FetchStatus(ctx context.Context, token string) (domain.Role, domain.WorkflowStatus, error)

	// ResetStatus moves a rejected pharmacy back to onboarding. The returned
	// status is the server-confirmed one; the client never infers it.
	ResetStatus(ctx context.Context, token string) (domain.WorkflowStatus, error)
}
