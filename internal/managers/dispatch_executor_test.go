package managers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_JSONResponseParsed(t *testing.T) {
	var receivedBody []byte
	var receivedAuth string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		receivedAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"run-1","state":"queued"}`))
	}))
	defer upstream.Close()

	executor := NewDispatchExecutor(DispatchExecutorDependencies{Timeout: 5 * time.Second})

	response, err := executor.Execute(context.Background(), domain.ProviderRequest{
		Method:  "POST",
		URL:     upstream.URL,
		Headers: map[string]string{"Authorization": "Bearer ghp_test"},
		Body:    map[string]any{"ref": "main"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, response.StatusCode)
	assert.Equal(t, map[string]any{"id": "run-1", "state": "queued"}, response.Body)
	assert.Empty(t, response.Raw)

	assert.Equal(t, "Bearer ghp_test", receivedAuth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(receivedBody, &sent))
	assert.Equal(t, map[string]any{"ref": "main"}, sent)
}

// Jenkins and friends often return non-JSON bodies; those come back raw
// instead of failing the normalization.
func TestExecute_NonJSONResponseReturnedRaw(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html>Not Found</html>"))
	}))
	defer upstream.Close()

	executor := NewDispatchExecutor(DispatchExecutorDependencies{Timeout: 5 * time.Second})

	response, err := executor.Execute(context.Background(), domain.ProviderRequest{
		Method: "GET",
		URL:    upstream.URL,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Nil(t, response.Body)
	assert.Equal(t, "<html>Not Found</html>", response.Raw)
}

func TestExecute_EmptyResponseBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	executor := NewDispatchExecutor(DispatchExecutorDependencies{Timeout: 5 * time.Second})

	response, err := executor.Execute(context.Background(), domain.ProviderRequest{
		Method: "POST",
		URL:    upstream.URL,
		Body:   map[string]any{"ref": "main"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
	assert.Nil(t, response.Body)
	assert.Empty(t, response.Raw)
}

func TestExecute_NetworkFailure(t *testing.T) {
	executor := NewDispatchExecutor(DispatchExecutorDependencies{Timeout: time.Second})

	_, err := executor.Execute(context.Background(), domain.ProviderRequest{
		Method: "GET",
		URL:    "http://127.0.0.1:1/",
	})

	assert.Error(t, err)
}
