package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidPrompt       = errors.New("invalid prompt")
	ErrUnknownSize         = errors.New("unknown image size")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAccountBlocked      = errors.New("account blocked")
	ErrPromptRejected      = errors.New("prompt rejected")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrGenerationInFlight  = errors.New("generation already in progress")
	ErrProviderFailure     = errors.New("provider failure")
)

// RejectionError carries the moderation feedback for a rejected prompt. It
// matches ErrPromptRejected with errors.Is.
type RejectionError struct {
	Suggestions string
	Category    string
}

func (e *RejectionError) Error() string {
	if e.Suggestions == "" {
		return ErrPromptRejected.Error()
	}
	return ErrPromptRejected.Error() + ": " + e.Suggestions
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrPromptRejected
}
