package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSessionAPI struct {
	loginResult  *ports.LoginResult
	loginErr     error
	loginCalls   int
	currentActor *domain.Actor
	currentErr   error
	logoutCalls  int
	logoutErr    error
}

func (s *stubSessionAPI) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	result := *s.loginResult
	return &result, nil
}

func (s *stubSessionAPI) Logout(_ context.Context, _ string) error {
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubSessionAPI) CurrentActor(_ context.Context, _ string) (*domain.Actor, error) {
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	actor := *s.currentActor
	return &actor, nil
}

type stubWorkflowAPI struct {
	role      domain.Role
	status    domain.WorkflowStatus
	fetchErr  error
	resetTo   domain.WorkflowStatus
	resetErr  error
	resetCall int
}

func (s *stubWorkflowAPI) FetchStatus(_ context.Context, _ string) (domain.Role, domain.WorkflowStatus, error) {
	if s.fetchErr != nil {
		return "", "", s.fetchErr
	}
	return s.role, s.status, nil
}

func (s *stubWorkflowAPI) ResetStatus(_ context.Context, _ string) (domain.WorkflowStatus, error) {
	s.resetCall++
	if s.resetErr != nil {
		return "", s.resetErr
	}
	return s.resetTo, nil
}

type memCredStore struct {
	saved      *ports.Credentials
	loadErr    error
	saveErr    error
	clearErr   error
	clearCalls int
}

func (m *memCredStore) Load(_ context.Context) (*ports.Credentials, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, domain.ErrNoCredentials
	}
	creds := *m.saved
	return &creds, nil
}

func (m *memCredStore) Save(_ context.Context, creds ports.Credentials) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &creds
	return nil
}

func (m *memCredStore) Clear(_ context.Context) error {
	m.clearCalls++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.saved = nil
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "actor_1", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func operatorActor(status domain.WorkflowStatus) domain.Actor {
	return domain.Actor{
		ID:             "ph_1",
		Role:           domain.RolePharmacyOperator,
		WorkflowStatus: status,
		DisplayName:    "Main Street Pharmacy",
	}
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func TestSessionStore_Restore_Success(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{currentActor: &actor}
	creds := &memCredStore{saved: &ports.Credentials{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		Actor:       actor,
	}}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())

	if !store.Pending() {
		t.Fatalf("expected pending before restore")
	}

	restored, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}
	if restored == nil || restored.ID != "ph_1" {
		t.Fatalf("unexpected restored actor: %+v", restored)
	}
	if store.Pending() {
		t.Fatalf("expected pending to settle after restore")
	}
	if _, ok := store.Token(); !ok {
		t.Fatalf("expected token after restore")
	}
}

func TestSessionStore_Restore_NoCredentials(t *testing.T) {
	store := NewSessionStore(&stubSessionAPI{}, &stubWorkflowAPI{}, &memCredStore{}, zerolog.Nop())

	restored, err := store.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}
	if restored != nil {
		t.Fatalf("expected no actor, got %+v", restored)
	}
	if store.Pending() {
		t.Fatalf("expected pending to settle even without a session")
	}
}

func TestSessionStore_Restore_ExpiredToken(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{currentActor: &actor}
	creds := &memCredStore{saved: &ports.Credentials{
		AccessToken: signedToken(t, time.Now().Add(-time.Hour)),
		Actor:       actor,
	}}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())

	restored, _ := store.Restore(context.Background())
	if restored != nil {
		t.Fatalf("expected expired token to yield no actor")
	}
	if creds.saved != nil {
		t.Fatalf("expected persisted credentials to be cleared")
	}
	if store.Actor() != nil {
		t.Fatalf("expected no in-memory actor")
	}
}

func TestSessionStore_Restore_MalformedToken(t *testing.T) {
	creds := &memCredStore{saved: &ports.Credentials{AccessToken: "not-a-jwt"}}
	store := NewSessionStore(&stubSessionAPI{}, &stubWorkflowAPI{}, creds, zerolog.Nop())

	restored, _ := store.Restore(context.Background())
	if restored != nil {
		t.Fatalf("expected malformed token to yield no actor")
	}
	if creds.saved != nil {
		t.Fatalf("expected persisted credentials to be cleared")
	}
}

func TestSessionStore_Restore_ServerRejects(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{currentErr: domain.ErrSessionExpired, currentActor: &actor}
	creds := &memCredStore{saved: &ports.Credentials{
		AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		Actor:       actor,
	}}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())

	restored, _ := store.Restore(context.Background())
	if restored != nil {
		t.Fatalf("expected server rejection to yield no actor")
	}
	if creds.saved != nil {
		t.Fatalf("expected persisted credentials to be cleared")
	}
	if store.Actor() != nil {
		t.Fatalf("expected pre-populated actor to be discarded")
	}
}

// ---------------------------------------------------------------------------
// Login / logout
// ---------------------------------------------------------------------------

func TestSessionStore_Login_Success(t *testing.T) {
	actor := operatorActor(domain.StatusPending)
	api := &stubSessionAPI{loginResult: &ports.LoginResult{Actor: actor, AccessToken: "tok_1"}}
	creds := &memCredStore{}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())
	before := store.Epoch()

	got, err := store.Login(context.Background(), "op@pharmacy.test", "s3cret")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if got.ID != "ph_1" {
		t.Fatalf("unexpected actor: %+v", got)
	}
	if creds.saved == nil || creds.saved.AccessToken != "tok_1" {
		t.Fatalf("expected credentials persisted, got %+v", creds.saved)
	}
	if store.Epoch() == before {
		t.Fatalf("expected epoch to advance on login")
	}
}

func TestSessionStore_Login_InvalidInput(t *testing.T) {
	api := &stubSessionAPI{}
	store := NewSessionStore(api, &stubWorkflowAPI{}, &memCredStore{}, zerolog.Nop())

	if _, err := store.Login(context.Background(), "", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.Login(context.Background(), "not-an-email", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad email, got %v", err)
	}
	if api.loginCalls != 0 {
		t.Fatalf("expected no API call for invalid input, got %d", api.loginCalls)
	}
}

func TestSessionStore_Login_PersistFailureRollsBack(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{loginResult: &ports.LoginResult{Actor: actor, AccessToken: "tok_1"}}
	creds := &memCredStore{saveErr: errors.New("disk full")}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())

	if _, err := store.Login(context.Background(), "op@pharmacy.test", "s3cret"); err == nil {
		t.Fatalf("expected error when persistence fails")
	}
	if store.Actor() != nil {
		t.Fatalf("expected no in-memory actor after rollback")
	}
	if _, ok := store.Token(); ok {
		t.Fatalf("expected no token after rollback")
	}
	if creds.clearCalls == 0 {
		t.Fatalf("expected partial persisted state to be wiped")
	}
}

func TestSessionStore_Login_APIFailureKeepsPriorState(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{loginResult: &ports.LoginResult{Actor: actor, AccessToken: "tok_1"}}
	store := NewSessionStore(api, &stubWorkflowAPI{}, &memCredStore{}, zerolog.Nop())

	if _, err := store.Login(context.Background(), "op@pharmacy.test", "s3cret"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	api.loginErr = domain.ErrInvalidCredentials
	if _, err := store.Login(context.Background(), "op@pharmacy.test", "wrong"); err == nil {
		t.Fatalf("expected error from rejected login")
	}
	if store.Actor() == nil {
		t.Fatalf("expected previous session to survive a failed login")
	}
}

func TestSessionStore_Logout_Idempotent(t *testing.T) {
	actor := operatorActor(domain.StatusApproved)
	api := &stubSessionAPI{loginResult: &ports.LoginResult{Actor: actor, AccessToken: "tok_1"}}
	creds := &memCredStore{}
	store := NewSessionStore(api, &stubWorkflowAPI{}, creds, zerolog.Nop())

	if _, err := store.Login(context.Background(), "op@pharmacy.test", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("second logout returned error: %v", err)
	}
	if store.Actor() != nil {
		t.Fatalf("expected no actor after logout")
	}
	if creds.saved != nil {
		t.Fatalf("expected credentials cleared after logout")
	}
	if api.logoutCalls != 1 {
		t.Fatalf("expected one server logout (no token on second call), got %d", api.logoutCalls)
	}
}

// ---------------------------------------------------------------------------
// Workflow status
// ---------------------------------------------------------------------------

func loggedInStore(t *testing.T, actor domain.Actor, workflow *stubWorkflowAPI) *SessionStore {
	t.Helper()
	api := &stubSessionAPI{loginResult: &ports.LoginResult{Actor: actor, AccessToken: "tok_1"}}
	store := NewSessionStore(api, workflow, &memCredStore{}, zerolog.Nop())
	if _, err := store.Login(context.Background(), "op@pharmacy.test", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return store
}

func TestSessionStore_RefreshStatus_Success(t *testing.T) {
	workflow := &stubWorkflowAPI{role: domain.RolePharmacyOperator, status: domain.StatusApproved}
	store := loggedInStore(t, operatorActor(domain.StatusPending), workflow)

	status, err := store.RefreshStatus(context.Background())
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s", status)
	}
	if actor := store.Actor(); actor.WorkflowStatus != domain.StatusApproved {
		t.Fatalf("expected actor status merged, got %s", actor.WorkflowStatus)
	}
}

func TestSessionStore_RefreshStatus_TransientErrorKeepsActor(t *testing.T) {
	workflow := &stubWorkflowAPI{fetchErr: domain.ErrBackendUnavailable}
	store := loggedInStore(t, operatorActor(domain.StatusPending), workflow)

	if _, err := store.RefreshStatus(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend error surfaced, got %v", err)
	}
	actor := store.Actor()
	if actor == nil || actor.WorkflowStatus != domain.StatusPending {
		t.Fatalf("expected previous actor untouched, got %+v", actor)
	}
}

func TestSessionStore_ResetWorkflow_FromRejected(t *testing.T) {
	workflow := &stubWorkflowAPI{resetTo: domain.StatusOnboardingRequired}
	store := loggedInStore(t, operatorActor(domain.StatusRejected), workflow)

	status, err := store.ResetWorkflow(context.Background())
	if err != nil {
		t.Fatalf("reset returned error: %v", err)
	}
	if status != domain.StatusOnboardingRequired {
		t.Fatalf("expected onboarding_required, got %s", status)
	}

	// After a server-confirmed reset, navigation to the onboarding form is
	// allowed again.
	gate := NewWorkflowStatusGate()
	decision := gate.Evaluate(store.Actor(), domain.PathOnboarding)
	if !decision.Allowed() {
		t.Fatalf("expected onboarding path allowed after reset, got %+v", decision)
	}
}

func TestSessionStore_ResetWorkflow_RejectedOnlyFromRejected(t *testing.T) {
	workflow := &stubWorkflowAPI{resetTo: domain.StatusOnboardingRequired}
	store := loggedInStore(t, operatorActor(domain.StatusPending), workflow)

	if _, err := store.ResetWorkflow(context.Background()); !errors.Is(err, domain.ErrResetNotAllowed) {
		t.Fatalf("expected ErrResetNotAllowed, got %v", err)
	}
	if workflow.resetCall != 0 {
		t.Fatalf("expected no server call, got %d", workflow.resetCall)
	}
}

func TestSessionStore_ResetWorkflow_ServerErrorKeepsStatus(t *testing.T) {
	workflow := &stubWorkflowAPI{resetErr: domain.ErrBackendUnavailable}
	store := loggedInStore(t, operatorActor(domain.StatusRejected), workflow)

	if _, err := store.ResetWorkflow(context.Background()); err == nil {
		t.Fatalf("expected error from failed reset")
	}
	if actor := store.Actor(); actor.WorkflowStatus != domain.StatusRejected {
		t.Fatalf("expected status unchanged without server confirmation, got %s", actor.WorkflowStatus)
	}
}
