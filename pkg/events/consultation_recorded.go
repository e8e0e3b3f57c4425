package events

import (
	"time"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

// ConsultationRecorded is published after a consultation row is committed.
type ConsultationRecorded struct {
	ConsultationID int64                 `json:"consultation_id"`
	DoctorID       int64                 `json:"doctor_id"`
	DoctorEmail    string                `json:"doctor_email"`
	DoctorName     string                `json:"doctor_name"`
	RecordedAt     time.Time             `json:"recorded_at"`
	Diagnosis      string                `json:"diagnosis"`
	Symptoms       []string              `json:"symptoms"`
	Treatment      string                `json:"treatment"`
	Prescriptions  []entity.Prescription `json:"prescriptions"`
	SafetyWarning  *string               `json:"safety_warning,omitempty"`
}

func NewConsultationRecorded(doctor *entity.User, c entity.Consultation) ConsultationRecorded {
	return ConsultationRecorded{
		ConsultationID: c.ID,
		DoctorID:       doctor.ID,
		DoctorEmail:    doctor.Email,
		DoctorName:     doctor.FullName,
		RecordedAt:     c.CreatedAt,
		Diagnosis:      c.Diagnosis,
		Symptoms:       c.Symptoms,
		Treatment:      c.Treatment,
		Prescriptions:  c.Prescriptions,
		SafetyWarning:  c.SafetyWarning,
	}
}
