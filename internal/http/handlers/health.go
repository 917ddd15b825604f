package handlers

import (
	"context"
	"net/http"
	"time"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "ai_enabled": a.AIEnabled}
	if a.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Ping(ctx); err != nil {
			a.log(r).Warn().Err(err).Msg("database ping failed")
			status["status"] = "degraded"
			status["database"] = "unreachable"
			a.json(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	a.json(w, http.StatusOK, status)
}
