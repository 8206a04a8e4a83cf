package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/assessment"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/models"
)

// GetMyForm returns the caller's submitted assessment, 404 when none exists.
func (h *Handler) GetMyForm(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var a models.Assessment
	if err := h.DB.First(&a, "user_id = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "No assessment found.")
			return
		}
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}

	c.JSON(http.StatusOK, a.Record())
}

// SubmitForm stores the caller's assessment. Each user may submit once.
func (h *Handler) SubmitForm(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	var rec assessment.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if errs := rec.Validate(); len(errs) > 0 {
		fieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	var cnt int64
	if err := h.DB.Model(&models.Assessment{}).Where("user_id = ?", uid).Count(&cnt).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Database error.")
		return
	}
	if cnt > 0 {
		detail(c, http.StatusBadRequest, "Assessment already submitted.")
		return
	}

	id, err := models.NewID()
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to allocate id.")
		return
	}

	a := models.AssessmentFromRecord(uid, &rec)
	a.ID = id
	if err := h.DB.Create(a).Error; err != nil {
		detail(c, http.StatusBadRequest, "Failed to store assessment.")
		return
	}

	// Submission events drive the confirmation worker; losing one is not
	// worth failing the request over.
	if h.Events != nil {
		if err := h.Events.PublishSubmission(c.Request.Context(), a.ID); err != nil {
			log.Printf("publish submission %s: %v", a.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      a.ID,
		"message": "Health assessment submitted successfully.",
	})
}
