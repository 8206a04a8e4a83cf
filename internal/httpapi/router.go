// Package httpapi wires the gin router for the HealthBridge backend.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/config"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/events"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/httpapi/handlers"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/httpapi/middleware"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/otp"
)

func NewRouter(db *gorm.DB, cfg config.Config, otpStore otp.Store, pub *events.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Route not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method not allowed."})
	})

	h := handlers.NewHandler(db, cfg, otpStore, pub)

	// availability check used by the client before loading the form
	r.GET("/", h.Ping)

	// auth
	r.POST("/auth/login/", h.Login)
	r.POST("/auth/register/", h.Register)
	r.POST("/auth/verify-otp/", h.VerifyOTP)
	r.POST("/auth/resend-otp/", h.ResendOTP)

	// health assessment (JWT required)
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/healthcare/form/me/", h.GetMyForm)
	authGroup.POST("/healthcare/form/submit/", h.SubmitForm)

	return r
}
