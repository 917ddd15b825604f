package handlers

import (
	"net/http"

	"artcreator/internal/domain"
	"artcreator/internal/middleware"
)

type meResponse struct {
	*domain.Profile
	CanGenerate      bool   `json:"can_generate"`
	Reason           string `json:"reason,omitempty"`
	ActiveGeneration string `json:"active_generation,omitempty"`
}

// Me returns the caller's credit profile, creating it on first access.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	profile, err := a.Profiles.Ensure(r.Context(), userID, middleware.EmailFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res := meResponse{Profile: profile, CanGenerate: true}
	if err := profile.CanGenerate(); err != nil {
		_, body := describeError(err)
		res.CanGenerate = false
		res.Reason = body.Code
	}
	if a.Generations != nil {
		if id, ok := a.Generations.Active(userID); ok {
			res.ActiveGeneration = id
		}
	}
	a.json(w, http.StatusOK, res)
}
