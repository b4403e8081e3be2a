package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
)

// actorPayload is the wire shape of an actor. The backend speaks camelCase.
type actorPayload struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	WorkflowStatus string `json:"workflowStatus,omitempty"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email,omitempty"`
}

func (p actorPayload) toDomain() domain.Actor {
	actor := domain.Actor{
		ID:             p.ID,
		Role:           domain.Role(p.Role),
		WorkflowStatus: domain.WorkflowStatus(p.WorkflowStatus),
		DisplayName:    p.DisplayName,
		Email:          p.Email,
	}
	actor.Normalize()
	return actor
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	User        actorPayload `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Login implements ports.SessionAPI.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var data loginData
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &data)
	if err != nil {
		// For an unauthenticated login call, a 401 means the credentials were
		// rejected, not that a session expired.
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, domain.ErrInvalidCredentials
		}
		var he *HTTPError
		if errors.As(err, &he) && (he.StatusCode == http.StatusBadRequest || he.StatusCode == http.StatusNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return &ports.LoginResult{Actor: data.User.toDomain(), AccessToken: data.AccessToken}, nil
}

// Logout implements ports.SessionAPI.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// CurrentActor implements ports.SessionAPI.
func (c *Client) CurrentActor(ctx context.Context, token string) (*domain.Actor, error) {
	var data struct {
		User actorPayload `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &data); err != nil {
		return nil, err
	}
	actor := data.User.toDomain()
	return &actor, nil
}
