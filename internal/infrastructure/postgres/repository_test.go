package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/repository"
)

// openTestPool connects to TEST_POSTGRES_DSN, migrates it and skips the test
// when the variable is unset.
func openTestPool(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	require.NoError(t, RunMigrations(dsn, logger))
	// second run is a no-op
	require.NoError(t, RunMigrations(dsn, logger))

	pool, err := NewPool(context.Background(), dsn, 4, 0, time.Minute)
	require.NoError(t, err)
	store := NewStore(pool)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(context.Background()))
	return store
}

func uniqueEmail() string { return uuid.NewString() + "@x.com" }

func TestUserRepositoryCreateIfAbsent(t *testing.T) {
	store := openTestPool(t)
	users := NewUserRepository(store.pool)
	ctx := context.Background()
	email := uniqueEmail()

	u := &entity.User{Email: email, FullName: "Dr A", PasswordHash: "h1"}
	created, err := users.CreateIfAbsent(ctx, u)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, u.ID)

	created, err = users.CreateIfAbsent(ctx, &entity.User{Email: email, FullName: "Dr B", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := users.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Dr A", got.FullName)
	assert.Equal(t, "h1", got.PasswordHash)

	_, err = users.GetByEmail(ctx, uniqueEmail())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsultationRepositoryListsNewestFirstPerDoctor(t *testing.T) {
	store := openTestPool(t)
	users := NewUserRepository(store.pool)
	consultations := NewConsultationRepository(store.pool)
	ctx := context.Background()

	a := &entity.User{Email: uniqueEmail(), PasswordHash: "h"}
	b := &entity.User{Email: uniqueEmail(), PasswordHash: "h"}
	_, err := users.CreateIfAbsent(ctx, a)
	require.NoError(t, err)
	_, err = users.CreateIfAbsent(ctx, b)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	warning := ""
	first := entity.Consultation{DoctorID: a.ID, CreatedAt: at, Diagnosis: "Flu", Treatment: "Rest",
		Symptoms: []string{"Fever"}, Prescriptions: []entity.Prescription{{Medication: "Paracetamol", Dosage: "500mg"}}}
	second := entity.Consultation{DoctorID: a.ID, CreatedAt: at.Add(time.Hour), Diagnosis: "Cold", Treatment: "Pending",
		SafetyWarning: &warning}
	other := entity.Consultation{DoctorID: b.ID, CreatedAt: at, Diagnosis: "HTN", Treatment: "Pending"}
	for _, c := range []*entity.Consultation{&first, &second, &other} {
		require.NoError(t, consultations.Create(ctx, c))
		assert.NotZero(t, c.ID)
	}

	list, err := consultations.ListByDoctor(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cold", list[0].Diagnosis)
	assert.Equal(t, []string{}, list[0].Symptoms)
	require.NotNil(t, list[0].SafetyWarning)
	assert.Equal(t, "", *list[0].SafetyWarning)
	assert.Equal(t, "Flu", list[1].Diagnosis)
	assert.Equal(t, first.Prescriptions, list[1].Prescriptions)
	assert.Nil(t, list[1].SafetyWarning)
	assert.True(t, at.Equal(list[1].CreatedAt))

	empty, err := consultations.ListByDoctor(ctx, -1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
