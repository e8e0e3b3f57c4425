package gateway

import (
	"context"
	"errors"
)

// Failure kinds surfaced by a TranscriptionGateway. Implementations wrap them
// so callers can classify with errors.Is.
var (
	ErrUpload            = errors.New("audio upload failed")
	ErrProcessingFailed  = errors.New("audio processing failed")
	ErrProcessingTimeout = errors.New("audio processing timed out")
	ErrGeneration        = errors.New("generation failed")
)

// FileState mirrors the processing state reported by the AI service.
type FileState string

const (
	FileProcessing FileState = "PROCESSING"
	FileActive     FileState = "ACTIVE"
	FileFailed     FileState = "FAILED"
)

// ExternalFile is a handle to audio uploaded to the AI service.
type ExternalFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// TranscriptionGateway turns an audio file into the model's raw text answer.
// A call moves UPLOADING -> PROCESSING -> READY and is consumed by Transcribe;
// any step may fail.
type TranscriptionGateway interface {
	Submit(ctx context.Context, path, mimeType string) (ExternalFile, error)
	// AwaitReady blocks until the file leaves PROCESSING, the configured
	// deadline passes, or ctx is done.
	AwaitReady(ctx context.Context, f ExternalFile) (ExternalFile, error)
	Transcribe(ctx context.Context, f ExternalFile, prompt string) (string, error)
	// Release deletes the remote artifact. Callers treat failures as non-fatal.
	Release(ctx context.Context, f ExternalFile) error
}
