package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"artcreator/internal/domain"
	"artcreator/internal/generation"
	"artcreator/internal/middleware"
)

type createGenerationRequest struct {
	Prompt  string `json:"prompt" validate:"max=2000"`
	Size    string `json:"size" validate:"max=64"`
	Seed    *int64 `json:"seed" validate:"omitempty,min=0"`
	Enhance *bool  `json:"enhance"`
}

type generationResponse struct {
	ID         string              `json:"id"`
	Status     generation.Status   `json:"status"`
	Prompt     string              `json:"prompt"`
	Size       string              `json:"size"`
	Progress   generation.Progress `json:"progress"`
	Result     *generation.Result  `json:"result,omitempty"`
	Error      *apiError           `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

func toGenerationResponse(g generation.Generation) generationResponse {
	res := generationResponse{
		ID:         g.ID,
		Status:     g.Status,
		Prompt:     g.Prompt,
		Size:       g.Size,
		Progress:   g.Progress,
		Result:     g.Result,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
		FinishedAt: g.FinishedAt,
	}
	if g.Err != nil {
		_, body := describeError(g.Err)
		res.Error = &body
	}
	return res
}

// CreateGeneration runs the pre-checks synchronously and queues the
// generation. Clients poll GetGeneration for progress.
func (a *App) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createGenerationRequest
	if !a.decode(w, r, &req) {
		return
	}
	size, err := domain.LookupImageSize(req.Size)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	email := middleware.EmailFromContext(r.Context())
	if _, err := a.Precheck.Precheck(r.Context(), userID, email, req.Prompt); err != nil {
		a.fail(w, r, err)
		return
	}
	enhance := true
	if req.Enhance != nil {
		enhance = *req.Enhance
	}
	gen, err := a.Generations.Start(generation.Request{
		UserID:  userID,
		Email:   email,
		Prompt:  strings.TrimSpace(req.Prompt),
		Size:    size,
		Seed:    req.Seed,
		Enhance: enhance,
		Country: middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.log(r).Info().Str("generation_id", gen.ID).Str("user_id", userID).Str("size", size.Label()).Msg("generation queued")
	w.Header().Set("Location", "/v1/generations/"+gen.ID)
	a.json(w, http.StatusAccepted, toGenerationResponse(gen))
}

func (a *App) GetGeneration(w http.ResponseWriter, r *http.Request) {
	gen, ok := a.ownedGeneration(r)
	if !ok {
		a.fail(w, r, domain.ErrNotFound)
		return
	}
	a.json(w, http.StatusOK, toGenerationResponse(gen))
}

// ownedGeneration looks up the generation named in the URL. Generations of
// other users are reported as missing.
func (a *App) ownedGeneration(r *http.Request) (generation.Generation, bool) {
	id := chi.URLParam(r, "id")
	gen, ok := a.Generations.Get(id)
	if !ok || gen.UserID != a.currentUserID(r) {
		return generation.Generation{}, false
	}
	return gen, true
}
