package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *ConsultationIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewConsultationIndex(es, "consultations", logrus.New())
}

func TestIndexSendsDocument(t *testing.T) {
	var path string
	var doc consultationDoc
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &doc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	warn := "Avoid NSAIDs"
	err := idx.Index(context.Background(), entity.Consultation{
		ID:            7,
		DoctorID:      3,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Diagnosis:     "Flu",
		Symptoms:      []string{"Fever"},
		Treatment:     "Rest",
		Prescriptions: []entity.Prescription{{Medication: "Paracetamol"}},
		SafetyWarning: &warn,
	})
	require.NoError(t, err)
	assert.Equal(t, "/consultations/_doc/7", path)
	assert.Equal(t, int64(3), doc.DoctorID)
	assert.Equal(t, []string{"Paracetamol"}, doc.Medications)
	assert.Equal(t, "Avoid NSAIDs", doc.SafetyWarning)
}

func TestIndexReportsErrorStatus(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})
	assert.Error(t, idx.Index(context.Background(), entity.Consultation{ID: 1}))
}

func TestSearchIDsFiltersByDoctor(t *testing.T) {
	var query string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query = string(body)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":9}},{"_source":{"id":4}}]}}`))
	})

	ids, err := idx.SearchIDs(context.Background(), 3, "fever", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, ids)
	assert.True(t, strings.Contains(query, `"doctor_id":3`), query)
	assert.True(t, strings.Contains(query, `"size":20`), query)
}
