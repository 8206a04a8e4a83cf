package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/auth"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/email"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/models"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/otp"
)

type registerReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	errs := map[string]string{}
	if req.Username == "" {
		errs["username"] = "This field is required."
	}
	if req.Email == "" {
		errs["email"] = "This field is required."
	}
	if req.Password == "" {
		errs["password"] = "This field is required."
	} else if len(req.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if len(errs) == 0 && req.Password != req.ConfirmPassword {
		errs["non_field_errors"] = "Passwords do not match."
	}
	if len(errs) > 0 {
		fieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&cnt).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	if cnt > 0 {
		fieldErrors(c, http.StatusBadRequest, map[string]string{
			"username": "A user with that username already exists.",
		})
		return
	}
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&cnt).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	if cnt > 0 {
		fieldErrors(c, http.StatusBadRequest, map[string]string{
			"email": "A user with that email already exists.",
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to hash password.")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		detail(c, http.StatusBadRequest, "Failed to create user.")
		return
	}

	if err := h.issueOTP(c, user.Email); err != nil {
		detail(c, http.StatusInternalServerError, "Failed to send verification code.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Please verify your email with the OTP sent to your inbox.",
	})
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.OTP == "" {
		detail(c, http.StatusBadRequest, "Email and OTP are required.")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusBadRequest, "No account found for this email.")
			return
		}
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}

	code, err := h.OTP.GetCode(c.Request.Context(), req.Email)
	if err != nil {
		if err == otp.ErrCodeNotFound {
			detail(c, http.StatusBadRequest, "OTP expired or not found.")
			return
		}
		detail(c, http.StatusInternalServerError, "Verification store error.")
		return
	}
	if code != req.OTP {
		detail(c, http.StatusBadRequest, "Invalid OTP.")
		return
	}

	if err := h.DB.Model(&user).Update("email_verified", true).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	_ = h.OTP.DeleteCode(c.Request.Context(), req.Email)

	c.JSON(http.StatusOK, gin.H{
		"message": "Your email has been verified successfully. You can now login.",
	})
}

type resendOTPReq struct {
	Email string `json:"email"`
}

func (h *Handler) ResendOTP(c *gin.Context) {
	var req resendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		detail(c, http.StatusBadRequest, "Email is required.")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusBadRequest, "No account found for this email.")
			return
		}
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	if user.EmailVerified {
		detail(c, http.StatusBadRequest, "Email is already verified.")
		return
	}

	if err := h.issueOTP(c, user.Email); err != nil {
		detail(c, http.StatusInternalServerError, "Failed to send verification code.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A new verification code has been sent to your email.",
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		detail(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusUnauthorized, "No active account found with the given credentials.")
			return
		}
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		detail(c, http.StatusUnauthorized, "No active account found with the given credentials.")
		return
	}
	if !user.EmailVerified {
		detail(c, http.StatusUnauthorized, "Email is not verified. Please verify your email first.")
		return
	}

	access, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.AccessTTL)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to sign token.")
		return
	}
	refresh, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.RefreshTTL)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to sign token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

// issueOTP generates, stores and delivers a fresh code. Without SMTP the
// code is logged so local development still works.
func (h *Handler) issueOTP(c *gin.Context, to string) error {
	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	if err := h.OTP.SetCode(c.Request.Context(), to, code, h.Cfg.OTPTTL); err != nil {
		return err
	}

	if !h.SMTPSetting.Configured() {
		log.Printf("otp for %s: %s (smtp not configured)", to, code)
		return nil
	}

	go func(cfg email.SMTPConfig, to, code string) {
		subject := "HealthBridge — Your verification code"
		body := "Hello,\n\n" +
			"Your HealthBridge verification code is: " + code + "\n\n" +
			"The code expires in 10 minutes. If you did not request it, you can ignore this email.\n\n" +
			"Best regards,\n" +
			"HealthBridge Seva Kendra\n"
		if err := email.SendText(cfg, to, subject, body); err != nil {
			log.Printf("send otp email to %s: %v", to, err)
		}
	}(h.SMTPSetting, to, code)

	return nil
}
