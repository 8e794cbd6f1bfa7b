package domain

import (
	"context"
	"errors"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrUnknownAction   = errors.New("unknown action")

	// ErrActionNotSupported marks (provider, action) pairs the vendor API has
	// no wired endpoint for. It is a normal outcome, not a fault.
	ErrActionNotSupported = errors.New("action requires provider-specific implementation")

	// ErrInvalidPayload marks caller errors an adapter catches before any
	// outbound call: malformed identifiers, missing required fields, or a
	// credential lacking a field the provider needs.
	ErrInvalidPayload = errors.New("invalid action payload")
)

type Provider string

const (
	ProviderGithubActions Provider = "github_actions"
	ProviderCircleCI      Provider = "circleci"
	ProviderJenkins       Provider = "jenkins"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGithubActions, ProviderCircleCI, ProviderJenkins:
		return true
	}

	return false
}

type ProviderAction string

const (
	ProviderAction_Trigger   ProviderAction = "trigger"
	ProviderAction_Status    ProviderAction = "status"
	ProviderAction_Artifacts ProviderAction = "artifacts"
	ProviderAction_Retry     ProviderAction = "retry"
)

func (a ProviderAction) Valid() bool {
	switch a {
	case ProviderAction_Trigger, ProviderAction_Status, ProviderAction_Artifacts, ProviderAction_Retry:
		return true
	}

	return false
}

// PipelineActionPayload is the generic payload every provider adapter
// translates into a concrete vendor request. Identifier shapes are
// provider-dependent: GitHub Actions uses "owner/repo" pipeline ids and
// "owner/repo/runId" composite run ids.
type PipelineActionPayload struct {
	PipelineID string         `json:"pipeline_id"`
	WorkflowID string         `json:"workflow_id"`
	Branch     string         `json:"branch"`
	Parameters map[string]any `json:"parameters"`
	RunID      string         `json:"run_id"`
}

// ProviderRequest describes one outbound HTTP call without performing it.
type ProviderRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// ProviderResponse is the normalized upstream response. Body holds the parsed
// JSON document when the vendor returned one, Raw holds the verbatim body
// otherwise (Jenkins often returns plain text or nothing).
type ProviderResponse struct {
	StatusCode int    `json:"status"`
	Body       any    `json:"body,omitempty"`
	Raw        string `json:"raw,omitempty"`
}

type ProviderAdapter interface {
	BuildRequest(ctx context.Context, action ProviderAction, payload PipelineActionPayload, credential ProviderCredential) (ProviderRequest, error)
}

type DispatchStatus string

const (
	DispatchStatus_Completed     DispatchStatus = "completed"
	DispatchStatus_NoCredentials DispatchStatus = "no_credentials"
	DispatchStatus_Unsupported   DispatchStatus = "unsupported"
)

// DispatchResult is the gateway's terminal outcome for one action. A missing
// credential or an unsupported pair is reported here rather than as an error
// so callers can render "not connected" instead of crashing.
type DispatchResult struct {
	Provider Provider
	Action   ProviderAction
	Status   DispatchStatus
	Reason   string
	Response *ProviderResponse
}
