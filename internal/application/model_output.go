package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

// MalformedOutputError is returned when the model answer is not the expected
// document. Raw holds the text exactly as received.
type MalformedOutputError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Reason, e.Err)
	}
	return "malformed model output: " + e.Reason
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedModelOutput }

var knownKeys = map[string]bool{
	"patient_symptoms": true,
	"diagnosis":        true,
	"treatment_plan":   true,
	"prescriptions":    true,
	"safety_warning":   true,
}

// StripCodeFence removes a surrounding markdown fence (``` or ```json).
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	// drop the info string, e.g. "json", which ends at the body or the line
	if i := strings.IndexAny(s, "{[\n"); i > 0 {
		s = s[i:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseModelOutput validates the model answer and fills defaults: missing or
// null diagnosis and treatment_plan become "Pending", missing lists become
// empty. It also reports top-level keys it did not recognise.
func ParseModelOutput(raw string) (entity.StructuredConsultation, []string, error) {
	var out entity.StructuredConsultation
	malformed := func(reason string, err error) (entity.StructuredConsultation, []string, error) {
		return entity.StructuredConsultation{}, nil, &MalformedOutputError{Raw: raw, Reason: reason, Err: err}
	}

	body := StripCodeFence(raw)
	if body == "" {
		return malformed("empty answer", nil)
	}

	var doc map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&doc); err != nil {
		return malformed("not a JSON object", err)
	}
	if doc == nil {
		return malformed("not a JSON object", nil)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return malformed("trailing data after JSON object", err)
	}

	var err error
	if out.PatientSymptoms, err = stringList(doc["patient_symptoms"]); err != nil {
		return malformed("patient_symptoms", err)
	}
	if out.Diagnosis, err = textOr(doc["diagnosis"], entity.PendingPlaceholder); err != nil {
		return malformed("diagnosis", err)
	}
	if out.TreatmentPlan, err = textOr(doc["treatment_plan"], entity.PendingPlaceholder); err != nil {
		return malformed("treatment_plan", err)
	}
	if out.Prescriptions, err = prescriptionList(doc["prescriptions"]); err != nil {
		return malformed("prescriptions", err)
	}
	if out.SafetyWarning, err = optionalText(doc["safety_warning"]); err != nil {
		return malformed("safety_warning", err)
	}

	var unknown []string
	for k := range doc {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return out, unknown, nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func textOr(v json.RawMessage, def string) (string, error) {
	if isNull(v) {
		return def, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("want string: %w", err)
	}
	return s, nil
}

func optionalText(v json.RawMessage) (*string, error) {
	if isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("want string or null: %w", err)
	}
	return &s, nil
}

func stringList(v json.RawMessage) ([]string, error) {
	if isNull(v) {
		return []string{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, fmt.Errorf("want array: %w", err)
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err != nil {
			return nil, fmt.Errorf("item %d: want string: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func prescriptionList(v json.RawMessage) ([]entity.Prescription, error) {
	if isNull(v) {
		return []entity.Prescription{}, nil
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, fmt.Errorf("want array of objects: %w", err)
	}
	out := make([]entity.Prescription, 0, len(items))
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("item %d: want object", i)
		}
		var p entity.Prescription
		var err error
		if p.Medication, err = textOr(it["medication"], ""); err != nil {
			return nil, fmt.Errorf("item %d medication: %w", i, err)
		}
		if p.Dosage, err = textOr(it["dosage"], ""); err != nil {
			return nil, fmt.Errorf("item %d dosage: %w", i, err)
		}
		if p.Frequency, err = textOr(it["frequency"], ""); err != nil {
			return nil, fmt.Errorf("item %d frequency: %w", i, err)
		}
		if p.Duration, err = textOr(it["duration"], ""); err != nil {
			return nil, fmt.Errorf("item %d duration: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
