// Package content talks to the external content collaborator serving the
// marketing site's portfolio.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/launchlift/launchlift/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, httpClient: http.DefaultClient}
}

// FetchPortfolio returns the published portfolio entries. A response with
// missing or empty items yields an empty slice, not an error.
func (c *Client) FetchPortfolio(ctx context.Context) ([]models.PortfolioEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch portfolio: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []models.PortfolioEntry `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	if payload.Items == nil {
		return []models.PortfolioEntry{}, nil
	}
	return payload.Items, nil
}
