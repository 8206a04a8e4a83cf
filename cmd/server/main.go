package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/config"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/db"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/events"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/httpapi"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/models"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/otp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("Failed to connect database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Assessment{}); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	var otpStore otp.Store
	if cfg.RedisAddr != "" {
		otpStore = otp.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		slog.Info("Using redis OTP store", "addr", cfg.RedisAddr)
	} else {
		otpStore = otp.NewMemoryStore()
		slog.Info("REDIS_ADDR not set, using in-memory OTP store")
	}

	var pub *events.Publisher
	if cfg.RabbitURL != "" {
		pub, err = events.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			slog.Error("Failed to connect RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		slog.Info("Submission events enabled", "queue", cfg.RabbitQueue)
	}

	r := httpapi.NewRouter(gdb, cfg, otpStore, pub)

	slog.Info("Starting server", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
