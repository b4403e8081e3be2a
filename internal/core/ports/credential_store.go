package ports

import (
	"context"
	"time"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// Credentials is the persisted client state: the access token plus an actor
// snapshot used to pre-populate the session before the server confirms it.
type Credentials struct {
	AccessToken string       `json:"access_token"`
	Actor       domain.Actor `json:"actor"`
	SavedAt     time.Time    `json:"saved_at"`
}

// CredentialStore persists credentials between runs. Implementations must
// treat missing or malformed state as domain.ErrNoCredentials, and Clear must
// be idempotent.
type CredentialStore interface {
	Load(ctx context.Context) (*Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}
