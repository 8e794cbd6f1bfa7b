package githubactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/opsdeck/pkg/domain"
)

const apiBaseURL = "https://api.github.com"

// Adapter translates gateway actions into GitHub Actions REST calls.
// Pipeline ids are "owner/repo"; run ids are composite "owner/repo/runId"
// where the last segment is the numeric run id.
type Adapter struct{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) BuildRequest(ctx context.Context, action domain.ProviderAction, payload domain.PipelineActionPayload, credential domain.ProviderCredential) (domain.ProviderRequest, error) {
	switch action {
	case domain.ProviderAction_Trigger:
		return a.buildTrigger(payload, credential)

	case domain.ProviderAction_Status:
		return a.buildRunRequest(payload, credential, "GET", "")

	case domain.ProviderAction_Artifacts:
		return a.buildRunRequest(payload, credential, "GET", "/artifacts")

	case domain.ProviderAction_Retry:
		return a.buildRunRequest(payload, credential, "POST", "/rerun")

	default:
		return domain.ProviderRequest{}, fmt.Errorf("github_actions: %w: %s", domain.ErrActionNotSupported, action)
	}
}

func (a *Adapter) buildTrigger(payload domain.PipelineActionPayload, credential domain.ProviderCredential) (domain.ProviderRequest, error) {
	owner, repo, err := splitPipelineID(payload.PipelineID)
	if err != nil {
		return domain.ProviderRequest{}, err
	}

	if payload.WorkflowID == "" {
		return domain.ProviderRequest{}, fmt.Errorf("%w: github_actions trigger requires a workflow id", domain.ErrInvalidPayload)
	}

	parameters := payload.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	return domain.ProviderRequest{
		Method:  "POST",
		URL:     fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches", apiBaseURL, owner, repo, payload.WorkflowID),
		Headers: authHeaders(credential),
		Body: map[string]any{
			"ref":    payload.Branch,
			"inputs": parameters,
		},
	}, nil
}

func (a *Adapter) buildRunRequest(payload domain.PipelineActionPayload, credential domain.ProviderCredential, method string, suffix string) (domain.ProviderRequest, error) {
	owner, repo, runID, err := splitRunID(payload.RunID)
	if err != nil {
		return domain.ProviderRequest{}, err
	}

	return domain.ProviderRequest{
		Method:  method,
		URL:     fmt.Sprintf("%s/repos/%s/%s/actions/runs/%s%s", apiBaseURL, owner, repo, runID, suffix),
		Headers: authHeaders(credential),
	}, nil
}

func authHeaders(credential domain.ProviderCredential) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + credential.Token,
		"Accept":        "application/vnd.github+json",
	}
}

func splitPipelineID(pipelineID string) (owner string, repo string, err error) {
	parts := strings.Split(pipelineID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: github_actions pipeline id must be owner/repo, got %q", domain.ErrInvalidPayload, pipelineID)
	}

	return parts[0], parts[1], nil
}

// splitRunID splits an "owner/repo/runId" composite. The last segment is the
// run id, the first two are owner and repo.
func splitRunID(runID string) (owner string, repo string, run string, err error) {
	parts := strings.Split(runID, "/")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("%w: github_actions run id must be owner/repo/runId, got %q", domain.ErrInvalidPayload, runID)
	}

	return parts[0], parts[1], parts[len(parts)-1], nil
}
