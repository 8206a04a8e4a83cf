package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server
	HTTPAddr string

	// Database. DBDriver is "sqlite" or "mysql"; DBDSN is a file path for
	// sqlite and a full DSN for mysql.
	DBDriver string
	DBDSN    string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// OTP storage and delivery
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OTPTTL        time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Submission events. RabbitURL empty means events are disabled.
	RabbitURL   string
	RabbitQueue string

	// Client side
	APIBaseURL     string
	StorePath      string
	ResendCooldown time.Duration
}

func Load() Config {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			// DSN demo:
			// app:apppass@tcp(127.0.0.1:3306)/healthbridge?charset=utf8mb4&parseTime=true&loc=Local
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				"app", "apppass", "127.0.0.1", "3306", "healthbridge",
			)
		default:
			dsn = "./data/healthbridge.db"
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			smtpPort = n
		}
	}
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = os.Getenv("SMTP_USER")
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "assessment_submissions"
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8000"
	}

	storePath := os.Getenv("CLIENT_STORE_PATH")
	if storePath == "" {
		storePath = "./data/client.db"
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8000"
	}

	return Config{
		HTTPAddr: httpAddr,

		DBDriver: driver,
		DBDSN:    dsn,

		JWTSecret:  secret,
		AccessTTL:  durationEnv("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTTL: durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		OTPTTL:        durationEnv("OTP_TTL", 10*time.Minute),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: smtpFrom,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		APIBaseURL:     apiBaseURL,
		StorePath:      storePath,
		ResendCooldown: durationEnv("OTP_RESEND_COOLDOWN", 90*time.Second),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
