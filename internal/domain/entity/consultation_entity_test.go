package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeListsRoundTrip(t *testing.T) {
	in := Consultation{
		ID:       7,
		Symptoms: []string{"Fever", "Dyspnea", "Chest pain, \"sharp\""},
		Prescriptions: []Prescription{
			{Medication: "Paracetamol", Dosage: "500mg", Frequency: "twice daily", Duration: "5 days"},
			{Medication: "Salbutamol", Dosage: "2 puffs", Frequency: "as needed", Duration: ""},
		},
	}
	s, p, err := in.EncodeLists()
	require.NoError(t, err)

	var out Consultation
	require.NoError(t, out.DecodeLists(s, p))
	assert.Equal(t, in.Symptoms, out.Symptoms)
	assert.Equal(t, in.Prescriptions, out.Prescriptions)
}

func TestEncodeListsNilAsEmptyArrays(t *testing.T) {
	var c Consultation
	s, p, err := c.EncodeLists()
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
	assert.Equal(t, "[]", p)

	require.NoError(t, c.DecodeLists("null", ""))
	assert.NotNil(t, c.Symptoms)
	assert.NotNil(t, c.Prescriptions)
}

func TestDecodeListsRejectsCorruptColumn(t *testing.T) {
	c := Consultation{ID: 3}
	err := c.DecodeLists("{not json", "[]")
	assert.ErrorContains(t, err, "consultation 3")
}

func TestNewConsultationCopiesFields(t *testing.T) {
	warn := "Warfarin with aspirin raises bleeding risk"
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewConsultation(42, at, StructuredConsultation{
		PatientSymptoms: []string{"Bruising"},
		Diagnosis:       "Coagulopathy",
		TreatmentPlan:   "Stop aspirin",
		SafetyWarning:   &warn,
	})
	assert.Equal(t, int64(42), c.DoctorID)
	assert.Equal(t, at, c.CreatedAt)
	assert.Equal(t, "Stop aspirin", c.Treatment)
	assert.Equal(t, &warn, c.SafetyWarning)
}
