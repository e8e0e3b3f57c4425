package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/oksasatya/mediscribe/internal/domain/gateway"
)

type filesAPI interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	Model             string
	PollInterval      time.Duration
	ProcessingTimeout time.Duration
}

// Gateway talks to the Gemini Files and Models APIs.
type Gateway struct {
	files  filesAPI
	models modelsAPI
	opts   Options
	logger logrus.FieldLogger
}

func New(ctx context.Context, apiKey string, opts Options, logger logrus.FieldLogger) (*Gateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newGateway(client.Files, client.Models, opts, logger), nil
}

func newGateway(files filesAPI, models modelsAPI, opts Options, logger logrus.FieldLogger) *Gateway {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ProcessingTimeout <= 0 {
		opts.ProcessingTimeout = 10 * time.Minute
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Gateway{files: files, models: models, opts: opts, logger: logger}
}

func (g *Gateway) Submit(ctx context.Context, path, mimeType string) (gateway.ExternalFile, error) {
	f, err := g.files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return gateway.ExternalFile{}, fmt.Errorf("%w: %v", gateway.ErrUpload, err)
	}
	if f == nil {
		return gateway.ExternalFile{}, fmt.Errorf("%w: empty upload response", gateway.ErrUpload)
	}
	ext := toExternal(f)
	if ext.MIMEType == "" {
		ext.MIMEType = mimeType
	}
	g.logger.WithFields(logrus.Fields{"file": ext.Name, "state": ext.State}).Debug("audio uploaded")
	return ext, nil
}

func (g *Gateway) AwaitReady(ctx context.Context, f gateway.ExternalFile) (gateway.ExternalFile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.ProcessingTimeout)
	defer cancel()

	ticker := time.NewTicker(g.opts.PollInterval)
	defer ticker.Stop()

	for {
		switch f.State {
		case gateway.FileActive:
			return f, nil
		case gateway.FileFailed:
			return f, fmt.Errorf("%w: file %s", gateway.ErrProcessingFailed, f.Name)
		}

		select {
		case <-ctx.Done():
			return f, fmt.Errorf("%w: file %s: %v", gateway.ErrProcessingTimeout, f.Name, ctx.Err())
		case <-ticker.C:
		}

		latest, err := g.files.Get(ctx, f.Name, nil)
		if err != nil {
			if ctx.Err() != nil {
				return f, fmt.Errorf("%w: file %s: %v", gateway.ErrProcessingTimeout, f.Name, ctx.Err())
			}
			return f, fmt.Errorf("%w: get %s: %v", gateway.ErrProcessingFailed, f.Name, err)
		}
		mime := f.MIMEType
		f = toExternal(latest)
		if f.MIMEType == "" {
			f.MIMEType = mime
		}
		if latest.Error != nil && f.State == gateway.FileFailed {
			g.logger.WithFields(logrus.Fields{"file": f.Name, "reason": latest.Error.Message}).Warn("audio processing failed")
		}
	}
}

func (g *Gateway) Transcribe(ctx context.Context, f gateway.ExternalFile, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromURI(f.URI, f.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.opts.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", gateway.ErrGeneration, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", gateway.ErrGeneration)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", gateway.ErrGeneration)
	}
	return text, nil
}

func (g *Gateway) Release(ctx context.Context, f gateway.ExternalFile) error {
	if f.Name == "" {
		return nil
	}
	if _, err := g.files.Delete(ctx, f.Name, nil); err != nil {
		g.logger.WithFields(logrus.Fields{"file": f.Name, "error": err.Error()}).Warn("failed to delete remote audio")
		return err
	}
	return nil
}

func toExternal(f *genai.File) gateway.ExternalFile {
	ext := gateway.ExternalFile{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
	}
	switch f.State {
	case genai.FileStateActive:
		ext.State = gateway.FileActive
	case genai.FileStateFailed:
		ext.State = gateway.FileFailed
	default:
		ext.State = gateway.FileProcessing
	}
	return ext
}

var _ gateway.TranscriptionGateway = (*Gateway)(nil)
