package managers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/rs/zerolog/log"
)

// DispatchExecutor performs the HTTP call an adapter described and normalizes
// the response. It never retries; a failed CI/CD call is reported once.
type DispatchExecutor interface {
	Execute(ctx context.Context, request domain.ProviderRequest) (domain.ProviderResponse, error)
}

type dispatchExecutor struct {
	client *http.Client
}

type DispatchExecutorDependencies struct {
	Timeout time.Duration
}

func NewDispatchExecutor(deps DispatchExecutorDependencies) DispatchExecutor {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &dispatchExecutor{
		client: &http.Client{Timeout: timeout},
	}
}

func (e *dispatchExecutor) Execute(ctx context.Context, request domain.ProviderRequest) (domain.ProviderResponse, error) {
	var bodyReader io.Reader

	if request.Body != nil {
		data, err := json.Marshal(request.Body)
		if err != nil {
			return domain.ProviderResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, request.Method, request.URL, bodyReader)
	if err != nil {
		return domain.ProviderResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range request.Headers {
		req.Header.Set(key, value)
	}

	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", request.Method).Str("url", request.URL).Msg("Provider request failed")
		return domain.ProviderResponse{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ProviderResponse{}, fmt.Errorf("failed to read provider response: %w", err)
	}

	return normalizeResponse(resp.StatusCode, body), nil
}

// normalizeResponse attempts a JSON parse of the upstream body and falls back
// to the raw body when the vendor did not return JSON (Jenkins often doesn't).
func normalizeResponse(statusCode int, body []byte) domain.ProviderResponse {
	if len(body) == 0 {
		return domain.ProviderResponse{StatusCode: statusCode}
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return domain.ProviderResponse{
			StatusCode: statusCode,
			Body:       parsed,
		}
	}

	return domain.ProviderResponse{
		StatusCode: statusCode,
		Raw:        string(body),
	}
}
