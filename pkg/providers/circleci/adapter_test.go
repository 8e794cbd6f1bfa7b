package circleci

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
		PipelineID: "gh/acme/widgets",
		Branch:     "main",
	}, domain.ProviderCredential{APIKey: "circle-key"})

	require.NoError(t, err)
	assert.Equal(t, "POST", request.Method)
	assert.Equal(t, "https://circleci.com/api/v2/project/gh/acme/widgets/pipeline", request.URL)
	assert.Equal(t, "circle-key", request.Headers["Circle-Token"])
	assert.Equal(t, map[string]any{
		"branch":     "main",
		"parameters": map[string]any{},
	}, request.Body)
}

func TestAdapter_BuildRequest_TriggerCustomBaseURL(t *testing.T) {
	adapter := NewAdapter()

	request, err := adapter.BuildRequest(context.Background(), domain.ProviderAction_Trigger, domain.PipelineActionPayload{
		PipelineID: "gh/acme/widgets",
		Branch:     "main",
	}, domain.ProviderCredential{APIKey: "circle-key", BaseURL: "https://circleci.internal/api/v2"})

	require.NoError(t, err)
	assert.Equal(t, "https://circleci.internal/api/v2/project/gh/acme/widgets/pipeline", request.URL)
}

func TestAdapter_BuildRequest_Status(t *testing.T) {
	adapter := NewAdapter()

	request, err := adapter.BuildRequest(context.Background(), domain.ProviderAction_Status, domain.PipelineActionPayload{
		RunID: "pipeline-uuid",
	}, domain.ProviderCredential{APIKey: "circle-key"})

	require.NoError(t, err)
	assert.Equal(t, "GET", request.Method)
	assert.Equal(t, "https://circleci.com/api/v2/pipeline/pipeline-uuid/workflow", request.URL)
}

func TestAdapter_BuildRequest_UnsupportedActions(t *testing.T) {
	adapter := NewAdapter()

	for _, action := range []domain.ProviderAction{domain.ProviderAction_Artifacts, domain.ProviderAction_Retry} {
		t.Run(string(action), func(t *testing.T) {
			_, err := adapter.BuildRequest(context.Background(), action, domain.PipelineActionPayload{
				RunID: "pipeline-uuid",
			}, domain.ProviderCredential{APIKey: "circle-key"})

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrActionNotSupported))
		})
	}
}
