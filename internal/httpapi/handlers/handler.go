package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/config"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/email"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/events"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/httpapi/middleware"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/otp"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	OTP         otp.Store
	SMTPSetting email.SMTPConfig

	// Events is nil when RabbitMQ is not configured.
	Events *events.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, otpStore otp.Store, pub *events.Publisher) *Handler {
	return &Handler{
		DB:  db,
		Cfg: cfg,
		OTP: otpStore,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		Events: pub,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "healthbridge"})
}

// detail renders the {"detail": ...} error shape the client expects.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// fieldErrors renders per-field message arrays, the shape the client maps
// back onto form fields.
func fieldErrors(c *gin.Context, status int, errs map[string]string) {
	body := gin.H{}
	for k, v := range errs {
		body[k] = []string{v}
	}
	c.JSON(status, body)
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
