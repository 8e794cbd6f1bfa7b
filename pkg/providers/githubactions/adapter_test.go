package githubactions

import (
	"context"
	"errors"
	"testing"

	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_BuildRequest_Trigger(t *testing.T) {
	adapter := NewAdapter()

	request, err := adapter.BuildRequest(context.Background(), domain.ProviderAction_Trigger, domain.PipelineActionPayload{
		PipelineID: "acme/widgets",
		WorkflowID: "ci.yml",
		Branch:     "main",
	}, domain.ProviderCredential{Token: "ghp_test"})

	require.NoError(t, err)
	assert.Equal(t, "POST", request.Method)
	assert.Equal(t, "https://api.github.com/repos/acme/widgets/actions/workflows/ci.yml/dispatches", request.URL)
	assert.Equal(t, "Bearer ghp_test", request.Headers["Authorization"])
	assert.Equal(t, map[string]any{
		"ref":    "main",
		"inputs": map[string]any{},
	}, request.Body)
}

func TestAdapter_BuildRequest_RunActions(t *testing.T) {
	adapter := NewAdapter()

	tests := []struct {
		name           string
		action         domain.ProviderAction
		runID          string
		expectedMethod string
		expectedURL    string
	}{
		{
			name:           "status",
			action:         domain.ProviderAction_Status,
			runID:          "acme/widgets/12345",
			expectedMethod: "GET",
			expectedURL:    "https://api.github.com/repos/acme/widgets/actions/runs/12345",
		},
		{
			name:           "artifacts",
			action:         domain.ProviderAction_Artifacts,
			runID:          "acme/widgets/12345",
			expectedMethod: "GET",
			expectedURL:    "https://api.github.com/repos/acme/widgets/actions/runs/12345/artifacts",
		},
		{
			name:           "retry",
			action:         domain.ProviderAction_Retry,
			runID:          "acme/widgets/12345",
			expectedMethod: "POST",
			expectedURL:    "https://api.github.com/repos/acme/widgets/actions/runs/12345/rerun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, err := adapter.BuildRequest(context.Background(), tt.action, domain.PipelineActionPayload{
				RunID: tt.runID,
			}, domain.ProviderCredential{Token: "ghp_test"})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedMethod, request.Method)
			assert.Equal(t, tt.expectedURL, request.URL)
		})
	}
}

func TestAdapter_BuildRequest_TriggerParameters(t *testing.T) {
	adapter := NewAdapter()

	request, err := adapter.BuildRequest(context.Background(), domain.ProviderAction_Trigger, domain.PipelineActionPayload{
		PipelineID: "acme/widgets",
		WorkflowID: "deploy.yml",
		Branch:     "release",
		Parameters: map[string]any{"environment": "staging"},
	}, domain.ProviderCredential{Token: "ghp_test"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"ref":    "release",
		"inputs": map[string]any{"environment": "staging"},
	}, request.Body)
}

func TestAdapter_BuildRequest_InvalidIdentifiers(t *testing.T) {
	adapter := NewAdapter()

	tests := []struct {
		name    string
		action  domain.ProviderAction
		payload domain.PipelineActionPayload
	}{
		{
			name:    "pipeline id without owner",
			action:  domain.ProviderAction_Trigger,
			payload: domain.PipelineActionPayload{PipelineID: "widgets", WorkflowID: "ci.yml"},
		},
		{
			name:    "trigger without workflow id",
			action:  domain.ProviderAction_Trigger,
			payload: domain.PipelineActionPayload{PipelineID: "acme/widgets"},
		},
		{
			name:    "run id with too few segments",
			action:  domain.ProviderAction_Status,
			payload: domain.PipelineActionPayload{RunID: "acme/12345"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.BuildRequest(context.Background(), tt.action, tt.payload, domain.ProviderCredential{Token: "ghp_test"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidPayload))
		})
	}
}
