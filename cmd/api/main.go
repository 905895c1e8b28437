package main

import (
	"context"
	"os"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/logger"
	"github.com/aman-gurjar-dev/TechnoHack/internal/server"
)

// @title TechnoHack API
// @version 1.0
// @description API for the TechnoHack student club platform: clubs, events and announcements
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>". The token cookie is accepted too.

func main() {
	ctx := context.Background()

	srv, err := server.NewServer(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a signal or a component failure and has shut everything down by the time it returns.
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server stopped with an error")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
