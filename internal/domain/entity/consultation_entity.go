package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// PendingPlaceholder is stored when the model leaves diagnosis or treatment empty.
const PendingPlaceholder = "Pending"

type Prescription struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   string `json:"duration"`
}

// StructuredConsultation is the JSON document the model is asked to produce.
// It is also the body returned by the analyze endpoint.
type StructuredConsultation struct {
	PatientSymptoms []string       `json:"patient_symptoms"`
	Diagnosis       string         `json:"diagnosis"`
	TreatmentPlan   string         `json:"treatment_plan"`
	Prescriptions   []Prescription `json:"prescriptions"`
	SafetyWarning   *string        `json:"safety_warning"`
}

// Consultation is one persisted diagnosis event owned by DoctorID.
type Consultation struct {
	ID            int64
	DoctorID      int64
	CreatedAt     time.Time
	Diagnosis     string
	Symptoms      []string
	Treatment     string
	Prescriptions []Prescription
	SafetyWarning *string
}

// NewConsultation builds the record persisted for a parsed model answer.
func NewConsultation(doctorID int64, at time.Time, sc StructuredConsultation) Consultation {
	return Consultation{
		DoctorID:      doctorID,
		CreatedAt:     at,
		Diagnosis:     sc.Diagnosis,
		Symptoms:      sc.PatientSymptoms,
		Treatment:     sc.TreatmentPlan,
		Prescriptions: sc.Prescriptions,
		SafetyWarning: sc.SafetyWarning,
	}
}

// EncodeLists serializes symptoms and prescriptions for text columns.
// Nil slices are stored as empty JSON arrays.
func (c *Consultation) EncodeLists() (symptoms string, prescriptions string, err error) {
	s := c.Symptoms
	if s == nil {
		s = []string{}
	}
	p := c.Prescriptions
	if p == nil {
		p = []Prescription{}
	}
	sb, err := json.Marshal(s)
	if err != nil {
		return "", "", fmt.Errorf("encode symptoms: %w", err)
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("encode prescriptions: %w", err)
	}
	return string(sb), string(pb), nil
}

// DecodeLists is the inverse of EncodeLists.
func (c *Consultation) DecodeLists(symptoms, prescriptions string) error {
	c.Symptoms = []string{}
	c.Prescriptions = []Prescription{}
	if symptoms != "" {
		if err := json.Unmarshal([]byte(symptoms), &c.Symptoms); err != nil {
			return fmt.Errorf("decode symptoms of consultation %d: %w", c.ID, err)
		}
	}
	if prescriptions != "" {
		if err := json.Unmarshal([]byte(prescriptions), &c.Prescriptions); err != nil {
			return fmt.Errorf("decode prescriptions of consultation %d: %w", c.ID, err)
		}
	}
	if c.Symptoms == nil {
		c.Symptoms = []string{}
	}
	if c.Prescriptions == nil {
		c.Prescriptions = []Prescription{}
	}
	return nil
}
