package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/repository"
)

type ConsultationRepository struct {
	pool *pgxpool.Pool
}

func NewConsultationRepository(pool *pgxpool.Pool) *ConsultationRepository {
	return &ConsultationRepository{pool: pool}
}

func (r *ConsultationRepository) Create(ctx context.Context, c *entity.Consultation) error {
	symptoms, prescriptions, err := c.EncodeLists()
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO consultations (doctor_id, date, symptoms, diagnosis, treatment, prescriptions, safety_warning)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.DoctorID, c.CreatedAt, symptoms, c.Diagnosis, c.Treatment, prescriptions, c.SafetyWarning).Scan(&c.ID)
}

func (r *ConsultationRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]entity.Consultation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, date, symptoms, diagnosis, treatment, prescriptions, safety_warning
		FROM consultations
		WHERE doctor_id = $1
		ORDER BY date DESC, id DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Consultation, 0)
	for rows.Next() {
		var (
			c                       entity.Consultation
			symptoms, prescriptions string
		)
		if err := rows.Scan(&c.ID, &c.DoctorID, &c.CreatedAt, &symptoms, &c.Diagnosis, &c.Treatment, &prescriptions, &c.SafetyWarning); err != nil {
			return nil, err
		}
		if err := c.DecodeLists(symptoms, prescriptions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ repository.ConsultationRepository = (*ConsultationRepository)(nil)
