package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/domain"
	"github.com/opsdeck/opsdeck/pkg/providers"

	"github.com/rs/zerolog/log"
)

// PipelineGatewayService answers trigger/status/artifacts/retry requests
// against the caller's configured CI/CD provider.
type PipelineGatewayService interface {
	DispatchAction(ctx context.Context, params DispatchActionParams) (domain.DispatchResult, error)
}

type DispatchActionParams struct {
	UserID   string
	Provider domain.Provider
	Action   domain.ProviderAction
	Payload  domain.PipelineActionPayload
}

type pipelineGatewayService struct {
	vault    domain.CredentialVault
	registry *providers.Registry
	executor DispatchExecutor
}

type PipelineGatewayServiceDependencies struct {
	CredentialVault  domain.CredentialVault
	AdapterRegistry  *providers.Registry
	DispatchExecutor DispatchExecutor
}

func NewPipelineGatewayService(deps PipelineGatewayServiceDependencies) PipelineGatewayService {
	return &pipelineGatewayService{
		vault:    deps.CredentialVault,
		registry: deps.AdapterRegistry,
		executor: deps.DispatchExecutor,
	}
}

// DispatchAction runs the request pipeline: resolve credentials, build the
// vendor request, execute, normalize. Provider and action validation happens
// before any vault lookup; missing credentials short-circuit before any
// outbound call.
func (s *pipelineGatewayService) DispatchAction(ctx context.Context, params DispatchActionParams) (domain.DispatchResult, error) {
	if !params.Provider.Valid() {
		return domain.DispatchResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, params.Provider)
	}

	if !params.Action.Valid() {
		return domain.DispatchResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownAction, params.Action)
	}

	adapter, ok := s.registry.Adapter(params.Provider)
	if !ok {
		return domain.DispatchResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, params.Provider)
	}

	credential, err := s.vault.Get(ctx, params.UserID, params.Provider)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	if credential == nil {
		return domain.DispatchResult{
			Provider: params.Provider,
			Action:   params.Action,
			Status:   domain.DispatchStatus_NoCredentials,
			Reason:   fmt.Sprintf("no credentials configured for %s", params.Provider),
		}, nil
	}

	request, err := adapter.BuildRequest(ctx, params.Action, params.Payload, *credential)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotSupported) {
			return domain.DispatchResult{
				Provider: params.Provider,
				Action:   params.Action,
				Status:   domain.DispatchStatus_Unsupported,
				Reason:   err.Error(),
			}, nil
		}

		return domain.DispatchResult{}, fmt.Errorf("failed to build provider request: %w", err)
	}

	log.Info().
		Str("provider", string(params.Provider)).
		Str("action", string(params.Action)).
		Str("method", request.Method).
		Msg("Dispatching provider action")

	response, err := s.executor.Execute(ctx, request)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	// The upstream response is passed through verbatim, HTTP-error bodies
	// included. Retrying a run is the separate retry action, never a
	// network-level retry here.
	return domain.DispatchResult{
		Provider: params.Provider,
		Action:   params.Action,
		Status:   domain.DispatchStatus_Completed,
		Response: &response,
	}, nil
}
