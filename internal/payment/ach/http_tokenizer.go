package ach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTokenizerConfig holds configuration for the HTTP tokenizer
type HTTPTokenizerConfig struct {
	Endpoint           string
	AuthorizationToken string
	Timeout            time.Duration
}

// HTTPTokenizer posts tokenize requests as JSON to the processor endpoint
type HTTPTokenizer struct {
	config HTTPTokenizerConfig
	client *http.Client
}

// NewHTTPTokenizer creates a new HTTP tokenizer
func NewHTTPTokenizer(config HTTPTokenizerConfig) *HTTPTokenizer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &HTTPTokenizer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type originalErrorDetail struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Details struct {
		OriginalError struct {
			Message string `json:"message"`
			Details struct {
				OriginalError []originalErrorDetail `json:"originalError"`
			} `json:"details"`
		} `json:"originalError"`
	} `json:"details"`
}

// Tokenize sends the request and decodes the nonce. Non-2xx answers are
// returned as *VendorError.
func (t *HTTPTokenizer) Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tokenize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if t.config.AuthorizationToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.config.AuthorizationToken)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tokenize request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenize response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeVendorError(resp.StatusCode, body)
	}

	var result TokenizeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tokenize response: %w", err)
	}
	return &result, nil
}

func decodeVendorError(status int, body []byte) *VendorError {
	vendorErr := &VendorError{StatusCode: status}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Details.OriginalError.Message == "" {
		vendorErr.Message = fmt.Sprintf("tokenizer returned status %d", status)
		return vendorErr
	}

	vendorErr.Message = parsed.Details.OriginalError.Message
	if nested := parsed.Details.OriginalError.Details.OriginalError; len(nested) > 0 {
		vendorErr.Detail = nested[0].Message
	}
	return vendorErr
}

var _ Tokenizer = (*HTTPTokenizer)(nil)
