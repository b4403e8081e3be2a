package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
	"github.com/pharmalink/portal-client/internal/pkg/metrics"
)

// SessionStore owns the current actor and the session lifecycle. Consumers
// read snapshots through Actor/Token/Epoch; nothing outside this store
// mutates session state.
type SessionStore struct {
	api      ports.SessionAPI
	workflow ports.WorkflowAPI
	creds    ports.CredentialStore
	validate *validator.Validate
	log      zerolog.Logger

	mu      sync.Mutex
	actor   *domain.Actor
	token   string
	epoch   uint64
	pending bool
}

func NewSessionStore(api ports.SessionAPI, workflow ports.WorkflowAPI, creds ports.CredentialStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:      api,
		workflow: workflow,
		creds:    creds,
		validate: validator.New(),
		log:      log,
		pending:  true,
	}
}

// Restore hydrates the session from persisted credentials and confirms it
// against the server. Any failure (missing, malformed, expired token, server
// rejection) clears persisted state and yields no actor; absence of a session
// is not an error. Gates must not trust decisions until this settles.
func (s *SessionStore) Restore(ctx context.Context) (*domain.Actor, error) {
	defer s.settle()

	stored, err := s.creds.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredentials) {
			s.log.Warn().Err(err).Msg("discarding unreadable persisted credentials")
		}
		s.clearSession(ctx)
		return nil, nil
	}

	if err := checkTokenExpiry(stored.AccessToken); err != nil {
		s.log.Debug().Err(err).Msg("persisted token unusable, clearing session")
		s.clearSession(ctx)
		return nil, nil
	}

	// Pre-populate from the snapshot so the UI has identity fields the
	// moment restore settles; the server response below is authoritative.
	snapshot := stored.Actor
	snapshot.Normalize()
	s.mu.Lock()
	s.actor = &snapshot
	s.token = stored.AccessToken
	s.mu.Unlock()

	confirmed, err := s.api.CurrentActor(ctx, stored.AccessToken)
	if err != nil {
		s.log.Info().Err(err).Msg("session restore rejected by server")
		s.clearSession(ctx)
		return nil, nil
	}
	confirmed.Normalize()

	s.mu.Lock()
	s.actor = confirmed
	s.mu.Unlock()

	metrics.SessionOpsTotal.WithLabelValues("restore", "ok").Inc()
	s.log.Info().Str("actor_id", confirmed.ID).Str("role", string(confirmed.Role)).Msg("session restored")
	actor := *confirmed
	return &actor, nil
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login authenticates against the marketplace and persists the session.
// Memory and persisted state change together: if persistence fails the
// in-memory actor is not installed and the previous session state survives.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*domain.Actor, error) {
	defer s.settle()

	if err := s.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		metrics.SessionOpsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	actor := result.Actor
	actor.Normalize()

	if err := s.creds.Save(ctx, ports.Credentials{
		AccessToken: result.AccessToken,
		Actor:       actor,
		SavedAt:     time.Now().UTC(),
	}); err != nil {
		// Roll back: never hold a live actor without matching persisted
		// credentials. Clear is idempotent, so a partial write is also wiped.
		_ = s.creds.Clear(ctx)
		s.log.Error().Err(err).Msg("credential persistence failed, login rolled back")
		return nil, err
	}

	s.mu.Lock()
	s.actor = &actor
	s.token = result.AccessToken
	s.epoch++
	s.mu.Unlock()

	metrics.SessionOpsTotal.WithLabelValues("login", "ok").Inc()
	s.log.Info().Str("actor_id", actor.ID).Str("role", string(actor.Role)).Msg("login succeeded")
	out := actor
	return &out, nil
}

// Logout clears the session. Idempotent: a second call finds nothing to clear
// and succeeds. The server call is best effort.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	s.clearSession(ctx)
	metrics.SessionOpsTotal.WithLabelValues("logout", "ok").Inc()
	return nil
}

// RefreshStatus re-fetches only the workflow-relevant actor fields. A
// transient error leaves the previous actor untouched and is returned to the
// caller; the session is never silently downgraded.
func (s *SessionStore) RefreshStatus(ctx context.Context) (domain.WorkflowStatus, error) {
	token, ok := s.Token()
	if !ok {
		return domain.StatusNone, domain.ErrNoSession
	}

	role, status, err := s.workflow.FetchStatus(ctx, token)
	if err != nil {
		metrics.SessionOpsTotal.WithLabelValues("refresh_status", "error").Inc()
		return domain.StatusNone, err
	}
	metrics.SessionOpsTotal.WithLabelValues("refresh_status", "ok").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actor == nil {
		return domain.StatusNone, domain.ErrNoSession
	}
	s.actor.Role = role
	s.actor.WorkflowStatus = status
	s.actor.Normalize()
	return s.actor.WorkflowStatus, nil
}

// ResetWorkflow asks the server to move a rejected pharmacy back to
// onboarding. The transition is applied only from the server's response,
// never inferred locally.
func (s *SessionStore) ResetWorkflow(ctx context.Context) (domain.WorkflowStatus, error) {
	token, ok := s.Token()
	if !ok {
		return domain.StatusNone, domain.ErrNoSession
	}

	s.mu.Lock()
	current := domain.StatusNone
	if s.actor != nil {
		current = s.actor.WorkflowStatus
	}
	s.mu.Unlock()

	if current != domain.StatusRejected {
		return current, domain.ErrResetNotAllowed
	}

	status, err := s.workflow.ResetStatus(ctx, token)
	if err != nil {
		metrics.SessionOpsTotal.WithLabelValues("reset_workflow", "error").Inc()
		return current, err
	}
	metrics.SessionOpsTotal.WithLabelValues("reset_workflow", "ok").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actor != nil {
		s.actor.WorkflowStatus = status
		s.actor.Normalize()
		status = s.actor.WorkflowStatus
	}
	s.log.Info().Str("status", string(status)).Msg("workflow status reset confirmed")
	return status, nil
}

// Actor returns a copy of the current actor, or nil for a guest session.
func (s *SessionStore) Actor() *domain.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actor == nil {
		return nil
	}
	actor := *s.actor
	return &actor
}

// Pending reports whether Restore has settled yet.
func (s *SessionStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Token implements ports.TokenSource.
func (s *SessionStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Epoch implements ports.TokenSource. It moves on login, logout, and restore
// failure; async consumers compare it at apply time to discard stale results.
func (s *SessionStore) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *SessionStore) settle() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}

func (s *SessionStore) clearSession(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted credentials")
	}
	s.mu.Lock()
	s.actor = nil
	s.token = ""
	s.epoch++
	s.mu.Unlock()
}

// checkTokenExpiry rejects persisted tokens that are malformed or already
// expired without a server round-trip. The signature is not verified here;
// only the server can do that, and CurrentActor is the authority.
func checkTokenExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return err
	}
	if exp != nil && exp.Before(time.Now()) {
		return domain.ErrSessionExpired
	}
	return nil
}
