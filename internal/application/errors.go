package application

import "errors"

var (
	ErrDuplicateIdentity = errors.New("email already registered")
	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnknownIdentity   = errors.New("token subject no longer exists")

	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrEmptyAudio           = errors.New("empty audio upload")
	ErrTranscriberDisabled  = errors.New("transcription is not configured")
	ErrEmptyQuery           = errors.New("empty search query")
)
