// Package sidecar provides shared HTTP transport for the optional model
// sidecars (translation, sentiment, event, NER). Each analyzer keeps its own
// request/response types; the wire plumbing lives here.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

var client = &http.Client{Timeout: defaultTimeout}

// Post sends req as JSON to baseURL+path and decodes the response into
// respPtr. respPtr must be a pointer to a struct matching the sidecar's
// response shape.
func Post(ctx context.Context, baseURL, path string, req, respPtr any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sidecar returned %d", resp.StatusCode)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	return nil
}

// healthResponse is the JSON shape returned by GET /health (model_version
// optional).
type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

// Health calls GET /health at baseURL and returns the advertised model
// version. A non-200 status or transport error means the sidecar is not
// usable.
func Health(ctx context.Context, baseURL string) (modelVersion string, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sidecar unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	var health healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&health); decodeErr == nil {
		modelVersion = health.ModelVersion
	}
	return modelVersion, nil
}
