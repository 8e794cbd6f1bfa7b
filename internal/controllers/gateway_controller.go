package controllers

import (
	"errors"

	"github.com/opsdeck/opsdeck/internal/managers"
	"github.com/opsdeck/opsdeck/internal/middlewares"
	"github.com/opsdeck/opsdeck/pkg/domain"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// GatewayController handles the CI/CD action endpoint: provider actions and
// credential management behind one discriminated request body.
type GatewayController struct {
	gatewayService  managers.PipelineGatewayService
	credentialVault domain.CredentialVault
}

type GatewayControllerDependencies struct {
	PipelineGatewayService managers.PipelineGatewayService
	CredentialVault        domain.CredentialVault
}

func NewGatewayController(deps GatewayControllerDependencies) *GatewayController {
	return &GatewayController{
		gatewayService:  deps.PipelineGatewayService,
		credentialVault: deps.CredentialVault,
	}
}

type ActionRequest struct {
	Action  string        `json:"action"`
	Payload ActionPayload `json:"payload"`
}

type ActionPayload struct {
	Provider    string            `json:"provider"`
	PipelineID  string            `json:"pipelineId"`
	WorkflowID  string            `json:"workflowId"`
	Branch      string            `json:"branch"`
	Parameters  map[string]any    `json:"parameters"`
	RunID       string            `json:"runId"`
	Credentials CredentialPayload `json:"credentials"`
}

type CredentialPayload struct {
	Token    string `json:"token"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
	Username string `json:"username"`
}

func (c *GatewayController) HandleAction(ctx fiber.Ctx) error {
	var req ActionRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID := middlewares.UserID(ctx)

	switch req.Action {
	case "trigger", "status", "artifacts", "retry":
		return c.dispatchProviderAction(ctx, userID, req)

	case "credentials_list":
		return c.listCredentials(ctx, userID, req)

	case "credentials_save":
		return c.saveCredential(ctx, userID, req)

	case "credentials_delete":
		return c.deleteCredential(ctx, userID, req)

	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown action",
		})
	}
}

func (c *GatewayController) dispatchProviderAction(ctx fiber.Ctx, userID string, req ActionRequest) error {
	result, err := c.gatewayService.DispatchAction(ctx.RequestCtx(), managers.DispatchActionParams{
		UserID:   userID,
		Provider: domain.Provider(req.Payload.Provider),
		Action:   domain.ProviderAction(req.Action),
		Payload: domain.PipelineActionPayload{
			PipelineID: req.Payload.PipelineID,
			WorkflowID: req.Payload.WorkflowID,
			Branch:     req.Payload.Branch,
			Parameters: req.Payload.Parameters,
			RunID:      req.Payload.RunID,
		},
	})
	if err != nil {
		// Caller errors caught before any outbound call are the caller's to
		// fix; only genuine upstream failures report as a bad gateway.
		if errors.Is(err, domain.ErrUnknownProvider) || errors.Is(err, domain.ErrUnknownAction) || errors.Is(err, domain.ErrInvalidPayload) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Error().Err(err).Str("action", req.Action).Msg("Failed to dispatch provider action")

		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	switch result.Status {
	case domain.DispatchStatus_Unsupported:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"status":  result.Status,
			"error":   result.Reason,
		})

	case domain.DispatchStatus_NoCredentials:
		return ctx.JSON(fiber.Map{
			"success": false,
			"status":  result.Status,
			"error":   result.Reason,
		})

	default:
		return ctx.JSON(fiber.Map{
			"success":  true,
			"status":   result.Status,
			"provider": result.Provider,
			"action":   result.Action,
			"result":   result.Response,
		})
	}
}

func (c *GatewayController) listCredentials(ctx fiber.Ctx, userID string, req ActionRequest) error {
	var provider *domain.Provider

	if req.Payload.Provider != "" {
		p := domain.Provider(req.Payload.Provider)
		if !p.Valid() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown provider",
			})
		}

		provider = &p
	}

	credentials, err := c.credentialVault.List(ctx.RequestCtx(), userID, provider)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list credentials")

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list credentials",
		})
	}

	return ctx.JSON(fiber.Map{
		"success":     true,
		"credentials": credentials,
	})
}

// saveCredential upserts the full credential set for (user, provider). The
// response never echoes the secret back.
func (c *GatewayController) saveCredential(ctx fiber.Ctx, userID string, req ActionRequest) error {
	provider := domain.Provider(req.Payload.Provider)
	if !provider.Valid() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown provider",
		})
	}

	credential := domain.ProviderCredential{
		Token:    req.Payload.Credentials.Token,
		APIKey:   req.Payload.Credentials.APIKey,
		BaseURL:  req.Payload.Credentials.BaseURL,
		Username: req.Payload.Credentials.Username,
	}

	if credential.Empty() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "credentials are required",
		})
	}

	metadata, err := c.credentialVault.Save(ctx.RequestCtx(), userID, provider, credential)
	if err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Failed to save credential")

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save credential",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"credential": fiber.Map{
			"id":       metadata.ID,
			"provider": metadata.Provider,
		},
	})
}

func (c *GatewayController) deleteCredential(ctx fiber.Ctx, userID string, req ActionRequest) error {
	provider := domain.Provider(req.Payload.Provider)
	if !provider.Valid() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown provider",
		})
	}

	if err := c.credentialVault.Delete(ctx.RequestCtx(), userID, provider); err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Failed to delete credential")

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete credential",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
	})
}
