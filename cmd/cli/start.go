package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/opsdeck/opsdeck/internal/initialization"
	"github.com/opsdeck/opsdeck/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewStartCommand(gatewayContainer *initialization.GatewayContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the integration gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(gatewayContainer)
		},
	}

	return cmd
}

func runGateway(gatewayContainer *initialization.GatewayContainer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting integration gateway")

	configManager := gatewayContainer.GetConfigManager()

	config, err := configManager.GetConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	deps, err := gatewayContainer.BuildGatewayDependencies(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build gateway dependencies")
	}
	defer deps.Pool.Close()

	app := server.NewHTTPServer(ctx, server.HTTPServerDependencies{
		GatewayController:      deps.GatewayController,
		NotificationController: deps.NotificationController,
		TokenVerifier:          deps.TokenVerifier,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down gateway")

		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	log.Info().Str("address", config.Address).Msg("Gateway listening")

	if err := app.Listen(config.Address); err != nil {
		return err
	}

	return nil
}
