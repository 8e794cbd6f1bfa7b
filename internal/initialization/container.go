package initialization

import (
	"context"
	"fmt"

	"github.com/opsdeck/opsdeck/internal/auth"
	"github.com/opsdeck/opsdeck/internal/controllers"
	"github.com/opsdeck/opsdeck/internal/managers"
	"github.com/opsdeck/opsdeck/internal/storage/postgres"
	"github.com/opsdeck/opsdeck/pkg/domain"
	"github.com/opsdeck/opsdeck/pkg/providers"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type GatewayContainer struct {
	configManager domain.ConfigManager
}

func NewGatewayContainer() (*GatewayContainer, error) {
	configManager, err := domain.NewConfigManager()
	if err != nil {
		return nil, err
	}

	return &GatewayContainer{
		configManager: configManager,
	}, nil
}

func (c *GatewayContainer) GetConfigManager() domain.ConfigManager {
	return c.configManager
}

type GatewayDependencies struct {
	GatewayController      *controllers.GatewayController
	NotificationController *controllers.NotificationController
	TokenVerifier          *auth.TokenVerifier
	Pool                   *pgxpool.Pool
}

func (c *GatewayContainer) BuildGatewayDependencies(ctx context.Context, config domain.GatewayConfig) (*GatewayDependencies, error) {
	log.Info().Msg("Building gateway dependencies")

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	pool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	tokenVerifier, err := auth.NewTokenVerifier(config.AuthSigningSecret)
	if err != nil {
		return nil, err
	}

	encryptor, err := managers.NewCredentialEncryptionService(config.VaultKey)
	if err != nil {
		return nil, err
	}

	credentialVault := managers.NewCredentialManager(managers.CredentialManagerDependencies{
		Repository: postgres.NewCredentialRepository(pool),
		Encryptor:  encryptor,
	})

	gatewayService := managers.NewPipelineGatewayService(managers.PipelineGatewayServiceDependencies{
		CredentialVault: credentialVault,
		AdapterRegistry: providers.NewRegistry(),
		DispatchExecutor: managers.NewDispatchExecutor(managers.DispatchExecutorDependencies{
			Timeout: config.HTTPTimeout(),
		}),
	})

	webhookDelivery := managers.NewWebhookDeliveryService(managers.WebhookDeliveryServiceDependencies{
		Ledger:     postgres.NewDeliveryLedger(pool),
		Timeout:    config.HTTPTimeout(),
		MaxRetries: config.WebhookMaxRetries,
		BaseDelay:  config.WebhookBaseDelay(),
	})

	notificationDispatcher := managers.NewNotificationDispatcher(managers.NotificationDispatcherDependencies{
		NotificationStore:      postgres.NewNotificationStore(pool),
		WebhookDeliveryService: webhookDelivery,
		EmailSender:            managers.NewResendEmailSender(config.ResendAPIKey, config.EmailFrom),
	})

	gatewayController := controllers.NewGatewayController(controllers.GatewayControllerDependencies{
		PipelineGatewayService: gatewayService,
		CredentialVault:        credentialVault,
	})

	notificationController := controllers.NewNotificationController(controllers.NotificationControllerDependencies{
		NotificationDispatcher: notificationDispatcher,
	})

	return &GatewayDependencies{
		GatewayController:      gatewayController,
		NotificationController: notificationController,
		TokenVerifier:          tokenVerifier,
		Pool:                   pool,
	}, nil
}
