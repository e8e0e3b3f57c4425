package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/gateway"
	repo "github.com/oksasatya/mediscribe/internal/domain/repository"
	"github.com/oksasatya/mediscribe/pkg/events"
	"github.com/oksasatya/mediscribe/pkg/helpers"
)

const (
	releaseTimeout   = 30 * time.Second
	sideEffectBudget = 5 * time.Second
	searchSize       = 50
	maxNameLen       = 64
)

type ConsultationIndexer interface {
	Index(ctx context.Context, c entity.Consultation) error
	SearchIDs(ctx context.Context, doctorID int64, q string, size int) ([]int64, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// OutputQuarantine stores raw model answers that failed validation.
type OutputQuarantine interface {
	Save(ctx context.Context, userID int64, raw string) (string, error)
}

// AudioUpload is the recording received from the clinician.
type AudioUpload struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

type ConsultationService struct {
	Repo       repo.ConsultationRepository
	Gateway    gateway.TranscriptionGateway
	Indexer    ConsultationIndexer
	Publisher  EventPublisher
	Quarantine OutputQuarantine
	Logger     logrus.FieldLogger
	TmpDir     string
	Prompt     string

	now func() time.Time
}

// NewConsultationService wires the ingestion workflow. Indexer, Publisher
// and Quarantine are optional and may be nil.
func NewConsultationService(r repo.ConsultationRepository, gw gateway.TranscriptionGateway, tmpDir string, logger logrus.FieldLogger) *ConsultationService {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &ConsultationService{
		Repo:    r,
		Gateway: gw,
		Logger:  logger,
		TmpDir:  tmpDir,
		Prompt:  ConsultationPrompt,
		now:     time.Now,
	}
}

// Ingest transcribes the recording, stores the structured result under the
// user's identity and returns it.
func (s *ConsultationService) Ingest(ctx context.Context, user *entity.User, audio AudioUpload) (entity.StructuredConsultation, error) {
	if s.Gateway == nil {
		return entity.StructuredConsultation{}, ErrTranscriberDisabled
	}
	log := s.Logger.WithField("user_id", user.ID)

	path, err := s.writeTransient(audio)
	if err != nil {
		return entity.StructuredConsultation{}, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			helpers.LogError(log, "failed to remove transient audio", rmErr, logrus.Fields{"path": path})
		}
	}()

	mimeType := detectMIME(path, audio.ContentType)
	file, err := s.Gateway.Submit(ctx, path, mimeType)
	if err != nil {
		return entity.StructuredConsultation{}, fmt.Errorf("submit audio: %w", err)
	}
	defer s.release(ctx, log, file)
	log = log.WithField("file", file.Name)

	file, err = s.Gateway.AwaitReady(ctx, file)
	if err != nil {
		return entity.StructuredConsultation{}, fmt.Errorf("await audio: %w", err)
	}

	raw, err := s.Gateway.Transcribe(ctx, file, s.Prompt)
	if err != nil {
		return entity.StructuredConsultation{}, fmt.Errorf("transcribe audio: %w", err)
	}

	sc, unknown, err := ParseModelOutput(raw)
	if err != nil {
		s.quarantine(ctx, log, user.ID, raw, err)
		return entity.StructuredConsultation{}, err
	}
	if len(unknown) > 0 {
		log.WithField("keys", unknown).Warn("model output has unexpected keys")
	}

	c := entity.NewConsultation(user.ID, s.now().UTC(), sc)
	if err := s.Repo.Create(ctx, &c); err != nil {
		return entity.StructuredConsultation{}, fmt.Errorf("store consultation: %w", err)
	}
	log.WithField("consultation_id", c.ID).Info("consultation recorded")

	s.afterRecord(ctx, log, user, c)
	return sc, nil
}

func (s *ConsultationService) writeTransient(audio AudioUpload) (string, error) {
	if err := os.MkdirAll(s.TmpDir, 0o700); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	path := filepath.Join(s.TmpDir, transientName(s.now(), audio.Filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create transient audio: %w", err)
	}
	n, err := io.Copy(f, audio.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = ErrEmptyAudio
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrEmptyAudio) {
			return "", err
		}
		return "", fmt.Errorf("write transient audio: %w", err)
	}
	return path, nil
}

func (s *ConsultationService) release(ctx context.Context, log logrus.FieldLogger, f gateway.ExternalFile) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.Gateway.Release(rctx, f); err != nil {
		helpers.LogError(log, "failed to release remote audio", err, nil)
	}
}

func (s *ConsultationService) quarantine(ctx context.Context, log logrus.FieldLogger, userID int64, raw string, cause error) {
	fields := logrus.Fields{"raw_len": len(raw)}
	if s.Quarantine != nil {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectBudget)
		defer cancel()
		uri, err := s.Quarantine.Save(qctx, userID, raw)
		if err != nil {
			helpers.LogError(log, "failed to quarantine model output", err, nil)
		} else {
			fields["quarantined"] = uri
		}
	}
	helpers.LogError(log, "model output rejected", cause, fields)
}

// afterRecord runs the best-effort side effects of a stored consultation.
func (s *ConsultationService) afterRecord(ctx context.Context, log logrus.FieldLogger, user *entity.User, c entity.Consultation) {
	if s.Indexer == nil && s.Publisher == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectBudget)
	defer cancel()
	if s.Indexer != nil {
		if err := s.Indexer.Index(sctx, c); err != nil {
			helpers.LogError(log, "failed to index consultation", err, logrus.Fields{"consultation_id": c.ID})
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.PublishJSON(sctx, events.NewConsultationRecorded(user, c)); err != nil {
			helpers.LogError(log, "failed to publish consultation event", err, logrus.Fields{"consultation_id": c.ID})
		}
	}
}

func (s *ConsultationService) ListHistory(ctx context.Context, user *entity.User) ([]entity.Consultation, error) {
	items, err := s.Repo.ListByDoctor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	return items, nil
}

// Search finds the user's consultations matching q. The search index ranks
// results when configured; otherwise a case-insensitive substring match over
// the history is used.
func (s *ConsultationService) Search(ctx context.Context, user *entity.User, q string) ([]entity.Consultation, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	history, err := s.ListHistory(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.Indexer != nil {
		ids, err := s.Indexer.SearchIDs(ctx, user.ID, q, searchSize)
		if err == nil {
			byID := make(map[int64]entity.Consultation, len(history))
			for _, c := range history {
				byID[c.ID] = c
			}
			out := make([]entity.Consultation, 0, len(ids))
			for _, id := range ids {
				if c, ok := byID[id]; ok {
					out = append(out, c)
				}
			}
			return out, nil
		}
		helpers.LogError(s.Logger, "search index unavailable, falling back to substring match", err, logrus.Fields{"user_id": user.ID})
	}

	needle := strings.ToLower(q)
	out := make([]entity.Consultation, 0)
	for _, c := range history {
		if matches(c, needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

func matches(c entity.Consultation, needle string) bool {
	fields := []string{c.Diagnosis, c.Treatment}
	fields = append(fields, c.Symptoms...)
	for _, p := range c.Prescriptions {
		fields = append(fields, p.Medication)
	}
	if c.SafetyWarning != nil {
		fields = append(fields, *c.SafetyWarning)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func detectMIME(path, declared string) string {
	if m, err := mimetype.DetectFile(path); err == nil && m.String() != "application/octet-stream" {
		return m.String()
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}

// transientName builds "<unix nanos>_<uuid>_<sanitized name>".
func transientName(at time.Time, filename string) string {
	return strconv.FormatInt(at.UnixNano(), 10) + "_" + uuid.NewString() + "_" + sanitizeFilename(filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}
	if out == "" {
		return "audio"
	}
	return out
}
