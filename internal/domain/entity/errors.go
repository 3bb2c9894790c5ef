package entity

import "errors"

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrInvalidJSON       = errors.New("invalid json from model")
	ErrInvalidIntent     = errors.New("invalid intent from model")
	ErrSpeechSynthesis   = errors.New("speech synthesis failed")
	ErrBadRequest        = errors.New("bad request")
)
