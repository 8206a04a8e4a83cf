// Package models holds the backend's gorm models.
package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/assessment"
)

type User struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	Username      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"`
	EmailVerified bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (User) TableName() string { return "users" }

// Assessment is one submitted health-assessment record. The unique index on
// UserID enforces one submission per user at the storage layer.
type Assessment struct {
	ID     string `gorm:"primaryKey;size:26"` // ULID length
	UserID uint64 `gorm:"uniqueIndex;not null"`

	Name           string `gorm:"type:varchar(255);not null"`
	Email          string `gorm:"type:varchar(255);not null"`
	Age            int    `gorm:"not null"`
	Gender         string `gorm:"type:varchar(32);not null"`
	State          string `gorm:"type:varchar(128);not null"`
	ContactDetails string `gorm:"type:varchar(255);not null"`

	ChronicConditions string `gorm:"type:text"`
	PastSurgeries     string `gorm:"type:text"`
	Allergies         string `gorm:"type:text"`
	Medications       string `gorm:"type:text"`
	Symptoms          string `gorm:"type:text"`
	SymptomSeverity   string `gorm:"type:varchar(32)"`
	SymptomDuration   string `gorm:"type:varchar(64)"`

	MentalHealthStress     bool
	MentalHealthAnxiety    bool
	MentalHealthDepression bool

	VaccinationHistory string `gorm:"type:text"`
	AccessibilityNeeds string `gorm:"type:text"`
	PregnancyStatus    string `gorm:"type:varchar(64)"`

	HealthInsuranceProvider string `gorm:"type:varchar(128)"`
	HealthInsurancePolicy   string `gorm:"type:varchar(128)"`

	PreferredLanguage     string `gorm:"type:varchar(64)"`
	ResearchParticipation bool

	EmergencyName         string `gorm:"type:varchar(255)"`
	EmergencyRelationship string `gorm:"type:varchar(128)"`
	EmergencyNumber       string `gorm:"type:varchar(64)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Assessment) TableName() string { return "assessments" }

// NewID returns a fresh ULID string.
func NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// AssessmentFromRecord maps the wire record onto a storable model.
func AssessmentFromRecord(userID uint64, r *assessment.Record) *Assessment {
	return &Assessment{
		UserID: userID,

		Name:           r.Name,
		Email:          r.Email,
		Age:            r.Age,
		Gender:         r.Gender,
		State:          r.State,
		ContactDetails: r.ContactDetails,

		ChronicConditions: r.ChronicConditions,
		PastSurgeries:     r.PastSurgeries,
		Allergies:         r.Allergies,
		Medications:       r.Medications,
		Symptoms:          r.Symptoms,
		SymptomSeverity:   r.SymptomSeverity,
		SymptomDuration:   r.SymptomDuration,

		MentalHealthStress:     r.MentalHealthStress,
		MentalHealthAnxiety:    r.MentalHealthAnxiety,
		MentalHealthDepression: r.MentalHealthDepression,

		VaccinationHistory: r.VaccinationHistory,
		AccessibilityNeeds: r.AccessibilityNeeds,
		PregnancyStatus:    r.PregnancyStatus,

		HealthInsuranceProvider: r.HealthInsuranceProvider,
		HealthInsurancePolicy:   r.HealthInsurancePolicy,

		PreferredLanguage:     r.PreferredLanguage,
		ResearchParticipation: r.ResearchParticipation,

		EmergencyName:         r.EmergencyContact.Name,
		EmergencyRelationship: r.EmergencyContact.Relationship,
		EmergencyNumber:       r.EmergencyContact.Number,
	}
}

// Record maps the model back to the wire shape.
func (a *Assessment) Record() assessment.Record {
	return assessment.Record{
		ID: a.ID,

		Name:           a.Name,
		Email:          a.Email,
		Age:            a.Age,
		Gender:         a.Gender,
		State:          a.State,
		ContactDetails: a.ContactDetails,

		ChronicConditions: a.ChronicConditions,
		PastSurgeries:     a.PastSurgeries,
		Allergies:         a.Allergies,
		Medications:       a.Medications,
		Symptoms:          a.Symptoms,
		SymptomSeverity:   a.SymptomSeverity,
		SymptomDuration:   a.SymptomDuration,

		MentalHealthStress:     a.MentalHealthStress,
		MentalHealthAnxiety:    a.MentalHealthAnxiety,
		MentalHealthDepression: a.MentalHealthDepression,

		VaccinationHistory: a.VaccinationHistory,
		AccessibilityNeeds: a.AccessibilityNeeds,
		PregnancyStatus:    a.PregnancyStatus,

		HealthInsuranceProvider: a.HealthInsuranceProvider,
		HealthInsurancePolicy:   a.HealthInsurancePolicy,

		PreferredLanguage:     a.PreferredLanguage,
		ResearchParticipation: a.ResearchParticipation,

		EmergencyContact: assessment.EmergencyContact{
			Name:         a.EmergencyName,
			Relationship: a.EmergencyRelationship,
			Number:       a.EmergencyNumber,
		},
	}
}
