package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "mediscribe-test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = NewStore(database).Close() })
	return database
}

func createUser(t *testing.T, repo *UserRepository, email string) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, FullName: "Dr " + email, PasswordHash: "hash"}
	created, err := repo.CreateIfAbsent(context.Background(), u)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, u.ID)
	return u
}

func TestCreateIfAbsentRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	first := createUser(t, repo, "a@x.com")

	dup := &entity.User{Email: "a@x.com", FullName: "Someone else", PasswordHash: "other"}
	created, err := repo.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, dup.ID)

	stored, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestEmailIsCaseSensitive(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	createUser(t, repo, "a@x.com")
	createUser(t, repo, "A@x.com")

	_, err := repo.GetByEmail(context.Background(), "A@X.COM")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsultationListsRoundTripAndOrder(t *testing.T) {
	database := openTestDB(t)
	users := NewUserRepository(database)
	repo := NewConsultationRepository(database)
	ctx := context.Background()

	doc := createUser(t, users, "a@x.com")
	other := createUser(t, users, "b@x.com")

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	warn := "Do not combine with alcohol"
	oldest := entity.Consultation{DoctorID: doc.ID, CreatedAt: base, Diagnosis: "Flu", Symptoms: []string{"Fever"}, Treatment: "Rest"}
	newest := entity.Consultation{
		DoctorID: doc.ID, CreatedAt: base.Add(2 * time.Hour), Diagnosis: "Asthma",
		Symptoms:      []string{"Wheeze", "Dyspnea"},
		Treatment:     "Inhaler",
		Prescriptions: []entity.Prescription{{Medication: "Salbutamol", Dosage: "100mcg", Frequency: "as needed", Duration: "30 days"}},
		SafetyWarning: &warn,
	}
	middle := entity.Consultation{DoctorID: doc.ID, CreatedAt: base.Add(90 * time.Minute), Diagnosis: "Cold", Treatment: "Fluids"}
	foreign := entity.Consultation{DoctorID: other.ID, CreatedAt: base.Add(3 * time.Hour), Diagnosis: "Secret", Treatment: "-"}

	for _, c := range []*entity.Consultation{&oldest, &newest, &middle, &foreign} {
		require.NoError(t, repo.Create(ctx, c))
		require.NotZero(t, c.ID)
	}

	list, err := repo.ListByDoctor(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Asthma", "Cold", "Flu"}, []string{list[0].Diagnosis, list[1].Diagnosis, list[2].Diagnosis})

	got := list[0]
	assert.Equal(t, newest.ID, got.ID)
	assert.Equal(t, newest.Symptoms, got.Symptoms)
	assert.Equal(t, newest.Prescriptions, got.Prescriptions)
	require.NotNil(t, got.SafetyWarning)
	assert.Equal(t, warn, *got.SafetyWarning)
	assert.True(t, newest.CreatedAt.Equal(got.CreatedAt))

	assert.Empty(t, list[1].Symptoms)
	assert.NotNil(t, list[1].Prescriptions)
	assert.Nil(t, list[1].SafetyWarning)

	for _, c := range list {
		assert.Equal(t, doc.ID, c.DoctorID)
	}
}

func TestConsultationRequiresExistingDoctor(t *testing.T) {
	repo := NewConsultationRepository(openTestDB(t))
	err := repo.Create(context.Background(), &entity.Consultation{DoctorID: 999, CreatedAt: time.Now().UTC(), Diagnosis: "x", Treatment: "y"})
	assert.Error(t, err)
}

func TestStorePing(t *testing.T) {
	assert.NoError(t, NewStore(openTestDB(t)).Ping(context.Background()))
}
