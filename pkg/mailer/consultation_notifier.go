package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/mediscribe/pkg/events"
	tpl "github.com/oksasatya/mediscribe/pkg/mailer/templates"
)

// ErrBadEvent marks messages that can never be delivered and should be dropped.
var ErrBadEvent = errors.New("bad consultation event")

// ConsultationNotifier mails a clinician the summary of a recorded consultation.
type ConsultationNotifier struct {
	Sender  Sender
	AppName string
}

func NewConsultationNotifier(sender Sender, appName string) *ConsultationNotifier {
	return &ConsultationNotifier{Sender: sender, AppName: appName}
}

// Handle decodes one queue message and sends the email.
func (n *ConsultationNotifier) Handle(ctx context.Context, body []byte) error {
	var evt events.ConsultationRecorded
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	if evt.DoctorEmail == "" {
		return fmt.Errorf("%w: consultation %d has no recipient", ErrBadEvent, evt.ConsultationID)
	}
	subject, text, html, err := tpl.Render(tpl.ConsultationSummaryTemplate, n.summary(evt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	return n.Sender.Send(ctx, evt.DoctorEmail, subject, text, html)
}

func (n *ConsultationNotifier) summary(evt events.ConsultationRecorded) tpl.ConsultationSummary {
	s := tpl.ConsultationSummary{
		AppName:        n.AppName,
		DoctorName:     evt.DoctorName,
		ConsultationID: evt.ConsultationID,
		RecordedAt:     evt.RecordedAt,
		Diagnosis:      evt.Diagnosis,
		Symptoms:       evt.Symptoms,
		Treatment:      evt.Treatment,
	}
	for _, p := range evt.Prescriptions {
		s.Prescriptions = append(s.Prescriptions, tpl.PrescriptionLine{
			Medication: p.Medication,
			Dosage:     p.Dosage,
			Frequency:  p.Frequency,
			Duration:   p.Duration,
		})
	}
	if evt.SafetyWarning != nil {
		s.SafetyWarning = *evt.SafetyWarning
	}
	return s
}
