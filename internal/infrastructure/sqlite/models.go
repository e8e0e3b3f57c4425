package sqlite

import (
	"time"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

type userModel struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null;default:''"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toEntity() *entity.User {
	return &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

type consultationModel struct {
	ID            int64     `gorm:"primaryKey"`
	DoctorID      int64     `gorm:"not null;index:idx_consultations_doctor_date,priority:1"`
	Doctor        userModel `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
	Date          time.Time `gorm:"column:date;not null;index:idx_consultations_doctor_date,priority:2"`
	Symptoms      string    `gorm:"type:text;not null"`
	Diagnosis     string    `gorm:"not null"`
	Treatment     string    `gorm:"type:text;not null"`
	Prescriptions string    `gorm:"type:text;not null"`
	SafetyWarning *string
}

func (consultationModel) TableName() string { return "consultations" }

func (m consultationModel) toEntity() (entity.Consultation, error) {
	c := entity.Consultation{
		ID:            m.ID,
		DoctorID:      m.DoctorID,
		CreatedAt:     m.Date,
		Diagnosis:     m.Diagnosis,
		Treatment:     m.Treatment,
		SafetyWarning: m.SafetyWarning,
	}
	err := c.DecodeLists(m.Symptoms, m.Prescriptions)
	return c, err
}
