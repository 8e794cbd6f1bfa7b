package jenkins

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/opsdeck/opsdeck/pkg/domain"
)

// Adapter translates gateway actions into Jenkins calls. Jenkins has no
// public default endpoint, so the base URL must come from the stored
// credential. Status, artifacts and retry have no wired endpoint and report
// an unsupported outcome.
type Adapter struct{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) BuildRequest(ctx context.Context, action domain.ProviderAction, payload domain.PipelineActionPayload, credential domain.ProviderCredential) (domain.ProviderRequest, error) {
	switch action {
	case domain.ProviderAction_Trigger:
		baseURL := strings.TrimSuffix(credential.BaseURL, "/")
		if baseURL == "" {
			return domain.ProviderRequest{}, fmt.Errorf("%w: jenkins requires a base_url in the stored credential", domain.ErrInvalidPayload)
		}

		if payload.PipelineID == "" {
			return domain.ProviderRequest{}, fmt.Errorf("%w: jenkins trigger requires a job path", domain.ErrInvalidPayload)
		}

		parameters := payload.Parameters
		if parameters == nil {
			parameters = map[string]any{}
		}

		return domain.ProviderRequest{
			Method:  "POST",
			URL:     fmt.Sprintf("%s/job/%s/build", baseURL, payload.PipelineID),
			Headers: authHeaders(credential),
			Body:    parameters,
		}, nil

	default:
		return domain.ProviderRequest{}, fmt.Errorf("jenkins: %w: %s", domain.ErrActionNotSupported, action)
	}
}

func authHeaders(credential domain.ProviderCredential) map[string]string {
	headers := map[string]string{}

	if credential.Username != "" {
		basic := base64.StdEncoding.EncodeToString([]byte(credential.Username + ":" + credential.APIKey))
		headers["Authorization"] = "Basic " + basic
	} else if credential.Token != "" {
		headers["Authorization"] = "Bearer " + credential.Token
	}

	return headers
}
