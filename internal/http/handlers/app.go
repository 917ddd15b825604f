package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator"
	"github.com/rs/zerolog"

	"artcreator/internal/domain"
	"artcreator/internal/generation"
	"artcreator/internal/middleware"
	"artcreator/internal/providers/prompt"
)

const maxBodyBytes = 64 << 10

// Prechecker refuses submissions that cannot run.
type Prechecker interface {
	Precheck(ctx context.Context, userID, email, text string) (*domain.Profile, error)
}

// Generations starts and looks up background generations.
type Generations interface {
	Start(req generation.Request) (generation.Generation, error)
	Get(id string) (generation.Generation, bool)
	Active(userID string) (string, bool)
}

// ImageFetcher downloads the bytes of a generated image.
type ImageFetcher interface {
	Fetch(ctx context.Context, generationID string, img domain.GeneratedImage) ([]byte, error)
}

type App struct {
	Logger      zerolog.Logger
	AIEnabled   bool
	Profiles    domain.ProfileRepository
	Gallery     domain.GalleryRepository
	Usage       domain.UsageRepository
	Analyzer    prompt.Analyzer
	Enhancer    prompt.Enhancer
	Precheck    Prechecker
	Generations Generations
	Fetcher     ImageFetcher
	// Ping checks the database for the health endpoint. Optional.
	Ping func(ctx context.Context) error

	validate *validator.Validate
}

func (a *App) validator() *validator.Validate {
	if a.validate == nil {
		a.validate = validator.New()
	}
	return a.validate
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// fail maps err to a status code and error body.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describeError(err)
	if status >= http.StatusInternalServerError {
		a.log(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.json(w, status, errorEnvelope{Error: body})
}

func describeError(err error) (int, apiError) {
	var rejection *domain.RejectionError
	switch {
	case errors.As(err, &rejection):
		return http.StatusUnprocessableEntity, apiError{"prompt_rejected", "Prompt needs improvement: " + rejection.Suggestions}
	case errors.Is(err, domain.ErrInvalidPrompt):
		return http.StatusBadRequest, apiError{"invalid_prompt", "Please enter a prompt to generate images"}
	case errors.Is(err, domain.ErrUnknownSize):
		return http.StatusBadRequest, apiError{"unknown_size", err.Error()}
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, apiError{"insufficient_credits", "You don't have enough credits. Please purchase more credits to continue."}
	case errors.Is(err, domain.ErrAccountBlocked):
		return http.StatusForbidden, apiError{"account_blocked", "Your account is blocked. Please contact support."}
	case errors.Is(err, domain.ErrGenerationInFlight):
		return http.StatusConflict, apiError{"generation_in_progress", "A generation is already running. Please wait for it to finish."}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, apiError{"not_found", "not found"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, apiError{"unauthorized", "unauthorized"}
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, apiError{"generation_failed", "Failed to generate images. Please try again."}
	default:
		return http.StatusInternalServerError, apiError{"internal", "internal error"}
	}
}

// decode reads a JSON body into dst and runs struct validation.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if err := a.validator().Struct(dst); err != nil {
		a.error(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid payload"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) recordUsage(r *http.Request, event domain.UsageEvent) {
	if a.Usage == nil {
		return
	}
	if event.Country == "" {
		event.Country = middleware.CountryFromContext(r.Context())
	}
	if err := a.Usage.Record(r.Context(), event); err != nil {
		a.log(r).Warn().Err(err).Str("event", string(event.Type)).Msg("usage event not recorded")
	}
}
