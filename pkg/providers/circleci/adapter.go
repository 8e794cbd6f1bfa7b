package circleci

import (
	"context"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"
)

const defaultBaseURL = "https://circleci.com/api/v2"

// Adapter translates gateway actions into CircleCI v2 API calls. Artifacts
// and retry have no wired endpoint and report an unsupported outcome.
type Adapter struct{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) BuildRequest(ctx context.Context, action domain.ProviderAction, payload domain.PipelineActionPayload, credential domain.ProviderCredential) (domain.ProviderRequest, error) {
	baseURL := credential.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	switch action {
	case domain.ProviderAction_Trigger:
		if payload.PipelineID == "" {
			return domain.ProviderRequest{}, fmt.Errorf("%w: circleci trigger requires a pipeline id", domain.ErrInvalidPayload)
		}

		parameters := payload.Parameters
		if parameters == nil {
			parameters = map[string]any{}
		}

		return domain.ProviderRequest{
			Method:  "POST",
			URL:     fmt.Sprintf("%s/project/%s/pipeline", baseURL, payload.PipelineID),
			Headers: authHeaders(credential),
			Body: map[string]any{
				"branch":     payload.Branch,
				"parameters": parameters,
			},
		}, nil

	case domain.ProviderAction_Status:
		if payload.RunID == "" {
			return domain.ProviderRequest{}, fmt.Errorf("%w: circleci status requires a run id", domain.ErrInvalidPayload)
		}

		return domain.ProviderRequest{
			Method:  "GET",
			URL:     fmt.Sprintf("%s/pipeline/%s/workflow", baseURL, payload.RunID),
			Headers: authHeaders(credential),
		}, nil

	default:
		return domain.ProviderRequest{}, fmt.Errorf("circleci: %w: %s", domain.ErrActionNotSupported, action)
	}
}

func authHeaders(credential domain.ProviderCredential) map[string]string {
	token := credential.APIKey
	if token == "" {
		token = credential.Token
	}

	return map[string]string{
		"Circle-Token": token,
	}
}
