package generation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed generation for the user-facing message.
type Kind string

const (
	KindUnavailable     Kind = "unavailable"
	KindQuotaExceeded   Kind = "quota_exceeded"
	KindContentRejected Kind = "content_rejected"
	KindGeneric         Kind = "generic"
)

var friendlyMessages = map[Kind]string{
	KindUnavailable:     "The image service is temporarily unavailable. Please try again in a few moments.",
	KindQuotaExceeded:   "The generation limit has been reached. Please try again later.",
	KindContentRejected: "The request was blocked by content guidelines. Please adjust the description and try again.",
	KindGeneric:         "Generation failed. Please try again.",
}

// FriendlyMessage returns the fixed user message for k.
func FriendlyMessage(k Kind) string {
	if m, ok := friendlyMessages[k]; ok {
		return m
	}
	return friendlyMessages[KindGeneric]
}

// ErrNoImage is returned when a response carries no image part.
var ErrNoImage = errors.New("response contained no image")

// ErrEmptyResponse is returned when a response has no candidates.
var ErrEmptyResponse = errors.New("response contained no candidates")

// APIError is a non-200 provider response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// GenerationError is a failed provider call translated for users. Message
// is safe to show; Err keeps the cause.
type GenerationError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Classify translates err into a GenerationError. Errors already
// classified are returned as they are; nil stays nil.
func Classify(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}
	k := classifyKind(err)
	return &GenerationError{Kind: k, Message: FriendlyMessage(k), Err: err}
}

func classifyKind(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusServiceUnavailable:
			return KindUnavailable
		case http.StatusTooManyRequests:
			return KindQuotaExceeded
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "overloaded"), strings.Contains(msg, "high demand"):
		return KindUnavailable
	case strings.Contains(msg, "quota"):
		return KindQuotaExceeded
	case strings.Contains(msg, "safety"), strings.Contains(msg, "blocked"):
		return KindContentRejected
	}
	return KindGeneric
}
