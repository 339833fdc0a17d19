package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/calendar"
	"github.com/merqhr/timesheet/internal/config"
	"github.com/merqhr/timesheet/internal/email"
	"github.com/merqhr/timesheet/internal/export"
	"github.com/merqhr/timesheet/internal/repository"
	"github.com/merqhr/timesheet/internal/server"
	"github.com/merqhr/timesheet/internal/timesheet"
	"github.com/merqhr/timesheet/pkg/database"
	"github.com/merqhr/timesheet/pkg/utils"
)

func main() {
	// Load .env if present, then configuration
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MERQ Timesheet System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Create export directory
	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export directory", zap.Error(err))
	}

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db, cfg.Email.Domain, logger)
	periodRepo := repository.NewPeriodRepository(db, logger)

	// Initialize calendar engine
	engine, err := calendar.NewEngine(cfg.CalendarEngineConfig())
	if err != nil {
		logger.Fatal("Failed to initialize calendar engine", zap.Error(err))
	}

	// Initialize timesheet store
	store := timesheet.NewStore(engine, cfg.StoreConfig(), logger)

	// Initialize Excel exporter
	exporter := export.NewExporter(export.Config{
		OutputDir:   cfg.Export.OutputDir,
		CompanyName: cfg.Export.CompanyName,
	}, logger)

	// Initialize email sender when submission mail is enabled
	var mailer *email.Sender
	if cfg.Email.Enabled {
		mailer = email.NewSender(email.Config{
			Host:         cfg.Email.Host,
			Port:         cfg.Email.Port,
			Username:     cfg.Email.Username,
			Password:     cfg.Email.Password,
			From:         cfg.Email.From,
			HRRecipients: cfg.Email.HRRecipients,
		}, logger)
	} else {
		logger.Warn("Submission email disabled; timesheets will only be exported")
	}

	handlers := server.NewHandlers(store, engine, employeeRepo, periodRepo, exporter, mailer, logger)

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Logger.Level == "debug",
	}, handlers, logger)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
