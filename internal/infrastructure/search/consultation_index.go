package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ConsultationIndex keeps a searchable copy of consultations in Elasticsearch.
// The database stays the source of truth; the index only ranks ids.
type ConsultationIndex struct {
	es     *elasticsearch.Client
	index  string
	logger logrus.FieldLogger
}

func NewConsultationIndex(es *elasticsearch.Client, index string, logger logrus.FieldLogger) *ConsultationIndex {
	return &ConsultationIndex{es: es, index: index, logger: logger}
}

type consultationDoc struct {
	ID            int64    `json:"id"`
	DoctorID      int64    `json:"doctor_id"`
	Date          string   `json:"date"`
	Diagnosis     string   `json:"diagnosis"`
	Symptoms      []string `json:"symptoms"`
	Treatment     string   `json:"treatment"`
	Medications   []string `json:"medications"`
	SafetyWarning string   `json:"safety_warning,omitempty"`
}

func toDoc(c entity.Consultation) consultationDoc {
	meds := make([]string, 0, len(c.Prescriptions))
	for _, p := range c.Prescriptions {
		meds = append(meds, p.Medication)
	}
	d := consultationDoc{
		ID:          c.ID,
		DoctorID:    c.DoctorID,
		Date:        c.CreatedAt.UTC().Format(time.RFC3339Nano),
		Diagnosis:   c.Diagnosis,
		Symptoms:    c.Symptoms,
		Treatment:   c.Treatment,
		Medications: meds,
	}
	if c.SafetyWarning != nil {
		d.SafetyWarning = *c.SafetyWarning
	}
	return d
}

func (x *ConsultationIndex) Index(ctx context.Context, c entity.Consultation) error {
	b, err := json.Marshal(toDoc(c))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(c.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(cctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index consultation %d: %s", c.ID, res.Status())
	}
	return nil
}

// SearchIDs returns ids of the doctor's consultations matching q, best match first.
func (x *ConsultationIndex) SearchIDs(ctx context.Context, doctorID int64, q string, size int) ([]int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"diagnosis^3", "symptoms^2", "treatment", "medications^2", "safety_warning"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"doctor_id": doctorID}},
				},
			},
		},
		"_source": []string{"id"},
		"size":    size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(cctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}
