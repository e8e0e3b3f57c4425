package repository

import (
	"context"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

type ConsultationRepository interface {
	Create(ctx context.Context, c *entity.Consultation) error
	// ListByDoctor returns the doctor's consultations, newest first.
	ListByDoctor(ctx context.Context, doctorID int64) ([]entity.Consultation, error)
}
