package main

import (
	"os"

	"github.com/yigit/visitportal/internal/pkg/logger"
	"github.com/yigit/visitportal/internal/server"
)

// @title Visit Portal
// @version 1.0
// @description Server-rendered scheduling portal for candidate visits. Only the JSON endpoints used by the calendar and the availability form are documented.

// @BasePath /
// @schemes http https

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
