package main

import (
	"go.uber.org/zap"

	"aura/internal/config"
	"aura/internal/database"
	logger "aura/internal/logging"
	"aura/internal/router"
	"aura/internal/services"
)

func main() {
	// Bootstrap logger so configuration loading has somewhere to report.
	boot, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}

	if err := config.Init(".", boot); err != nil {
		boot.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.Init(config.Conf.Logging)
	if err != nil {
		boot.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Background trace retention
	services.NewRetentionSweeper(log).Start()

	// Setup router, passing the logger to it
	r := router.Setup(log)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
