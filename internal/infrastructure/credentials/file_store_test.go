package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
)

func testCredentials() ports.Credentials {
	return ports.Credentials{
		AccessToken: "tok-123",
		Actor: domain.Actor{
			ID:             "ph1",
			Role:           domain.RolePharmacyOperator,
			WorkflowStatus: domain.StatusApproved,
			DisplayName:    "Farmacia Centro",
		},
		SavedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, testCredentials()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := testCredentials()
	if got.AccessToken != want.AccessToken {
		t.Fatalf("expected token %s, got %s", want.AccessToken, got.AccessToken)
	}
	if got.Actor.ID != want.Actor.ID || got.Actor.Role != want.Actor.Role {
		t.Fatalf("expected actor %+v, got %+v", want.Actor, got.Actor)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestFileStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestFileStore_EmptyTokenTreatedAsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"access_token":""}`), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); !errors.Is(err, domain.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials for empty token, got %v", err)
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, testCredentials()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear must succeed, got %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials after clear, got %v", err)
	}
}
