package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"agroyield/internal/models"
)

// Sentinel errors distinguishing a malformed upstream answer from a
// transport failure. The broker classifies absorbed failures by them.
var (
	ErrUpstreamStatus = errors.New("model service returned an error status")
	ErrUpstreamDecode = errors.New("model service response could not be decoded")
)

// Client is a client for the external yield model service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ModelResponse is the wire shape returned by the model service. Only the
// yield estimate and confidence score are guaranteed; everything else is
// optional and normalized by the broker.
type ModelResponse struct {
	PredictedYieldTHa      float64   `json:"predicted_yield_t_ha"`
	PredictedYieldRangeTHa []float64 `json:"predicted_yield_range_t_ha,omitempty"`
	ConfidenceScore        float64   `json:"confidence_score"`
	RiskFactors            []string  `json:"risk_factors,omitempty"`
	ExpectedHarvestDate    string    `json:"expected_harvest_date,omitempty"`
	ModelVersion           string    `json:"model_version,omitempty"`
}

// NewClient creates a new model service client. The timeout caps the whole
// HTTP exchange; the broker additionally arms a per-call context deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict calls POST {baseURL}/predict with the request body.
func (c *Client) Predict(ctx context.Context, request models.PredictionRequest) (*ModelResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	var result ModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamDecode, err)
	}

	return &result, nil
}
