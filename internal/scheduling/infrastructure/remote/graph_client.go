// Package remote fetches a declarative task graph document from an
// external authoring surface over HTTP, OAuth2 client-credentials
// authenticated. Parsing that document into domain.Task values is the
// caller's responsibility (the same decoder the CLI uses for local
// graph files) — this package only owns the authenticated transport.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"
)

// GraphClientConfig configures OAuth2 client-credentials authentication
// against the task-graph authoring service.
type GraphClientConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// GraphClient fetches raw task graph documents over HTTP.
type GraphClient struct {
	httpClient *http.Client
}

// NewGraphClient builds a GraphClient whose requests carry an
// automatically refreshed OAuth2 bearer token.
func NewGraphClient(ctx context.Context, cfg GraphClientConfig) *GraphClient {
	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return &GraphClient{httpClient: oauthCfg.Client(ctx)}
}

// FetchGraph retrieves the raw task graph document at url. Callers pass
// the bytes to the same JSON decoder used for local graph files.
func (c *GraphClient) FetchGraph(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch graph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read graph response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch graph: unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
