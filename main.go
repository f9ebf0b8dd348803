// main.go
package main

import (
	"log"

	"interview-booking/cmd"
	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/internal/wire"
	"interview-booking/pkg/database"
	"interview-booking/pkg/notify"
	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	window, err := entity.NewBookingWindow(config.Booking.WindowStart, config.Booking.WindowEnd)
	if err != nil {
		logger.Fatal("Invalid booking window", zap.Error(err))
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("timezone", config.App.Location().String()),
		zap.String("booking_window", window.String()),
	)

	// Connect to database
	db, err := database.InitDB(config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	notifier, closeNotifier, err := notify.New(config, logger)
	if err != nil {
		logger.Fatal("Failed to init notifier", zap.Error(err))
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Warn("Failed to close notifier", zap.Error(err))
		}
	}()

	repos := repository.NewRepository(db, window, logger)

	// Wire all dependencies
	app, err := wire.Wiring(repos, window, notifier, config, logger)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}

	app.Scheduler.Start()

	if err := cmd.APIServer(app, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
