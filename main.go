package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"agroyield/internal/config"
	"agroyield/internal/repository"
	"agroyield/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// .env is optional, env vars may come from the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found", zap.Error(err))
	}

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize repositories
	farmerRepo := repository.NewFarmerRepository(db, logger)
	farmRepo := repository.NewFarmRepository(db, logger)
	predictionRepo := repository.NewPredictionRepository(db, logger)

	log := logrus.New()

	// Initialize and run the server
	srv := server.NewServer(cfg, farmerRepo, farmRepo, predictionRepo, logger, log)
	if err := srv.Run(cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
