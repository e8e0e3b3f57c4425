package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/application"
	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/internal/domain/gateway"
	"github.com/oksasatya/mediscribe/internal/interface/middleware"
	"github.com/oksasatya/mediscribe/pkg/helpers"
	"github.com/oksasatya/mediscribe/pkg/response"
)

// multipart framing allowance on top of the audio limit
const multipartOverhead = 1 << 20

type ConsultationHandler struct {
	Svc           *application.ConsultationService
	Logger        logrus.FieldLogger
	MaxAudioBytes int64
}

func NewConsultationHandler(svc *application.ConsultationService, maxAudioBytes int64, logger logrus.FieldLogger) *ConsultationHandler {
	return &ConsultationHandler{Svc: svc, Logger: logger, MaxAudioBytes: maxAudioBytes}
}

type historyItem struct {
	ID            int64                 `json:"id"`
	Date          time.Time             `json:"date"`
	Diagnosis     string                `json:"diagnosis"`
	Symptoms      []string              `json:"symptoms"`
	Treatment     string                `json:"treatment"`
	Prescriptions []entity.Prescription `json:"prescriptions"`
	SafetyWarning *string               `json:"safety_warning"`
}

func toHistoryItems(items []entity.Consultation) []historyItem {
	out := make([]historyItem, 0, len(items))
	for _, c := range items {
		out = append(out, historyItem{
			ID:            c.ID,
			Date:          c.CreatedAt,
			Diagnosis:     c.Diagnosis,
			Symptoms:      c.Symptoms,
			Treatment:     c.Treatment,
			Prescriptions: c.Prescriptions,
			SafetyWarning: c.SafetyWarning,
		})
	}
	return out
}

// ingestFailure maps a workflow error to its status and client message.
func ingestFailure(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrEmptyAudio):
		return http.StatusBadRequest, "Uploaded file is empty"
	case errors.Is(err, application.ErrTranscriberDisabled):
		return http.StatusServiceUnavailable, "Consultation analysis is not configured"
	case errors.Is(err, gateway.ErrUpload):
		return http.StatusInternalServerError, "Could not upload the recording for analysis"
	case errors.Is(err, gateway.ErrProcessingFailed):
		return http.StatusInternalServerError, "The recording could not be processed"
	case errors.Is(err, gateway.ErrProcessingTimeout):
		return http.StatusInternalServerError, "Timed out while processing the recording"
	case errors.Is(err, gateway.ErrGeneration):
		return http.StatusInternalServerError, "The analysis service did not return a result"
	case errors.Is(err, application.ErrMalformedModelOutput):
		return http.StatusInternalServerError, "The analysis result could not be understood"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// Analyze POST /analyze-consultation, multipart field "file".
func (h *ConsultationHandler) Analyze(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	log := h.Logger.WithFields(logrus.Fields{"request_id": c.GetString("request_id"), "user_id": u.ID})

	if h.MaxAudioBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxAudioBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			response.Abort(c, http.StatusRequestEntityTooLarge, "Audio file too large", nil)
			return
		}
		response.Abort(c, http.StatusBadRequest, "No audio file uploaded", nil)
		return
	}
	if h.MaxAudioBytes > 0 && fh.Size > h.MaxAudioBytes {
		response.Abort(c, http.StatusRequestEntityTooLarge, "Audio file too large", nil)
		return
	}
	if fh.Size == 0 {
		response.Abort(c, http.StatusBadRequest, "Uploaded file is empty", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		helpers.LogError(log, "open upload failed", err, nil)
		response.Abort(c, http.StatusBadRequest, "No audio file uploaded", nil)
		return
	}
	defer func() { _ = f.Close() }()

	sc, err := h.Svc.Ingest(c.Request.Context(), u, application.AudioUpload{
		Body:        f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		status, msg := ingestFailure(err)
		if status >= http.StatusInternalServerError {
			helpers.LogError(log, "consultation analysis failed", err, nil)
		}
		response.Abort(c, status, msg, nil)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// History GET /history
func (h *ConsultationHandler) History(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	items, err := h.Svc.ListHistory(c.Request.Context(), u)
	if err != nil {
		helpers.LogError(h.Logger, "list history failed", err, logrus.Fields{"request_id": c.GetString("request_id"), "user_id": u.ID})
		response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, toHistoryItems(items))
}

// Search GET /history/search?q=
func (h *ConsultationHandler) Search(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	items, err := h.Svc.Search(c.Request.Context(), u, c.Query("q"))
	if err != nil {
		if errors.Is(err, application.ErrEmptyQuery) {
			response.Abort(c, http.StatusBadRequest, "Query parameter q is required", nil)
			return
		}
		helpers.LogError(h.Logger, "search history failed", err, logrus.Fields{"request_id": c.GetString("request_id"), "user_id": u.ID})
		response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, toHistoryItems(items))
}
