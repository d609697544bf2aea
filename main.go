package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/config"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/database"
	logger "github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/logging"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/router"
)

func main() {
	projectRoot, err := os.Getwd()
	if err != nil {
		panic("failed to determine project root: " + err.Error())
	}

	// Initialize Logger
	log, err := logger.Init(projectRoot)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(projectRoot, log); err != nil {
		log.Fatal("Failed to initialize configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Load the questionnaire scale catalog at startup
	catalog, err := models.LoadScaleCatalog("config/scales.yaml")
	if err != nil {
		log.Warn("Falling back to built-in scale catalog", zap.Error(err))
		catalog = models.DefaultScaleCatalog()
	}

	// Setup router, passing the logger to it
	r := router.Setup(log, catalog)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
