package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	"go.uber.org/zap"
)

// HTTPClient implements port.ProviderClient against the verification gateway's
// REST API. All methods return a ProviderError on transport or API failure so
// callers can distinguish gateway trouble from their own bugs.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates a provider gateway client
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type catalogResponse struct {
	Providers []*entity.VerificationProvider `json:"providers"`
}

// FetchCatalog retrieves the list of available verification providers
func (c *HTTPClient) FetchCatalog(ctx context.Context) ([]*entity.VerificationProvider, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/providers", nil)
	if err != nil {
		return nil, port.NewProviderError("fetch catalog", err)
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, port.NewProviderError("fetch catalog", fmt.Errorf("decode response: %w", err))
	}

	return resp.Providers, nil
}

type submitRequest struct {
	DocumentID string `json:"document_id"`
	ProviderID string `json:"provider_id"`
	Reference  string `json:"reference"`
}

// Submit delegates a document to a provider under the given reference
func (c *HTTPClient) Submit(ctx context.Context, documentID, providerID, reference string) error {
	payload := submitRequest{
		DocumentID: documentID,
		ProviderID: providerID,
		Reference:  reference,
	}

	if _, err := c.do(ctx, http.MethodPost, "/v1/submissions", payload); err != nil {
		c.logger.Error("Provider submission failed",
			zap.String("document_id", documentID),
			zap.String("provider_id", providerID),
			zap.String("reference", reference),
			zap.Error(err))
		return port.NewProviderError("submit", err)
	}

	c.logger.Info("Submitted to provider",
		zap.String("document_id", documentID),
		zap.String("provider_id", providerID),
		zap.String("reference", reference))

	return nil
}

type statusResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	LastUpdated time.Time `json:"last_updated"`
}

// CheckStatus polls the gateway for a submission's current status
func (c *HTTPClient) CheckStatus(ctx context.Context, reference string) (*entity.ProviderStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/submissions/"+reference+"/status", nil)
	if err != nil {
		return nil, port.NewProviderError("check status", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, port.NewProviderError("check status", fmt.Errorf("decode response: %w", err))
	}

	return &entity.ProviderStatus{
		Status:      resp.Status,
		Message:     resp.Message,
		LastUpdated: resp.LastUpdated,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify interface compliance
var _ port.ProviderClient = (*HTTPClient)(nil)
