package api

import (
	"context"
	"net/http"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

type workflowStatusData struct {
	Role           string `json:"role"`
	WorkflowStatus string `json:"workflowStatus"`
}

// FetchStatus implements ports.WorkflowAPI.
func (c *Client) FetchStatus(ctx context.Context, token string) (domain.Role, domain.WorkflowStatus, error) {
	var data workflowStatusData
	if err := c.doJSON(ctx, http.MethodGet, "/pharmacy/status", token, nil, &data); err != nil {
		return "", "", err
	}
	return domain.Role(data.Role), domain.WorkflowStatus(data.WorkflowStatus), nil
}

// ResetStatus implements ports.WorkflowAPI.
func (c *Client) ResetStatus(ctx context.Context, token string) (domain.WorkflowStatus, error) {
	var data workflowStatusData
	if err := c.doJSON(ctx, http.MethodPost, "/pharmacy/status/reset", token, nil, &data); err != nil {
		return "", err
	}
	return domain.WorkflowStatus(data.WorkflowStatus), nil
}
