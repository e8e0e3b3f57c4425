package sqlite

import (
	"context"

	"gorm.io/gorm"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/repository"
)

type ConsultationRepository struct {
	database *gorm.DB
}

func NewConsultationRepository(database *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{database: database}
}

func (repo *ConsultationRepository) Create(ctx context.Context, c *entity.Consultation) error {
	symptoms, prescriptions, err := c.EncodeLists()
	if err != nil {
		return err
	}
	row := consultationModel{
		DoctorID:      c.DoctorID,
		Date:          c.CreatedAt,
		Symptoms:      symptoms,
		Diagnosis:     c.Diagnosis,
		Treatment:     c.Treatment,
		Prescriptions: prescriptions,
		SafetyWarning: c.SafetyWarning,
	}
	if err := repo.database.WithContext(ctx).Omit("Doctor").Create(&row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

func (repo *ConsultationRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]entity.Consultation, error) {
	rows := make([]consultationModel, 0)
	if err := repo.database.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Consultation, 0, len(rows))
	for _, row := range rows {
		c, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

var _ repository.ConsultationRepository = (*ConsultationRepository)(nil)
