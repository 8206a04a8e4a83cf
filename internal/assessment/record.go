package assessment

import "regexp"

// EmergencyContact is the nested emergency-contact record.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Number       string `json:"number"`
}

// Record is the health-assessment form as it travels over the wire. Field
// names match the backend contract.
type Record struct {
	ID string `json:"id,omitempty"`

	Name           string `json:"name"`
	Email          string `json:"email"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	State          string `json:"state"`
	ContactDetails string `json:"contact_details"`

	ChronicConditions string `json:"chronic_conditions"`
	PastSurgeries     string `json:"past_surgeries"`
	Allergies         string `json:"allergies"`
	Medications       string `json:"medications"`
	Symptoms          string `json:"symptoms"`
	SymptomSeverity   string `json:"symptom_severity"`
	SymptomDuration   string `json:"symptom_duration"`

	MentalHealthStress     bool `json:"mental_health_stress"`
	MentalHealthAnxiety    bool `json:"mental_health_anxiety"`
	MentalHealthDepression bool `json:"mental_health_depression"`

	VaccinationHistory string `json:"vaccination_history"`
	AccessibilityNeeds string `json:"accessibility_needs"`
	PregnancyStatus    string `json:"pregnancy_status"`

	HealthInsuranceProvider string `json:"health_insurance_provider"`
	HealthInsurancePolicy   string `json:"health_insurance_policy"`

	PreferredLanguage     string `json:"preferred_language"`
	ResearchParticipation bool   `json:"research_participation"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the required fields and formats. It returns a map of
// field name to message; an empty map means the record may be submitted.
func (r *Record) Validate() map[string]string {
	errs := map[string]string{}

	if r.Name == "" {
		errs["name"] = "Name is required"
	}
	if r.Email == "" {
		errs["email"] = "Email is required"
	}
	if r.Age == 0 {
		errs["age"] = "Age is required"
	}
	if r.Gender == "" {
		errs["gender"] = "Gender is required"
	}
	if r.State == "" {
		errs["state"] = "State is required"
	}
	if r.ContactDetails == "" {
		errs["contact_details"] = "Contact details are required"
	}

	if r.Email != "" && !emailPattern.MatchString(r.Email) {
		errs["email"] = "Invalid email format"
	}

	if r.Age != 0 && (r.Age < 1 || r.Age > 120) {
		errs["age"] = "Age must be a valid number between 1 and 120"
	}

	return errs
}
