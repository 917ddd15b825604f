package handlers

import (
	"net/http"
	"strings"
	"time"

	"artcreator/internal/domain"
)

type promptRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

func (a *App) AnalyzePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !a.decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Prompt)
	if text == "" {
		a.fail(w, r, domain.ErrInvalidPrompt)
		return
	}
	start := time.Now()
	res, err := a.Analyzer.Analyze(r.Context(), text)
	a.recordUsage(r, domain.UsageEvent{
		UserID:     a.currentUserID(r),
		Type:       domain.UsagePromptAnalyze,
		Success:    err == nil,
		LatencyMS:  int(time.Since(start).Milliseconds()),
		Properties: map[string]any{"length": len(text)},
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !a.decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Prompt)
	if text == "" {
		a.fail(w, r, domain.ErrInvalidPrompt)
		return
	}
	start := time.Now()
	res, err := a.Enhancer.Enhance(r.Context(), text)
	props := map[string]any{"length": len(text)}
	if res != nil {
		props["provider"] = res.Provider
		props["enhanced"] = res.Enhanced
	}
	a.recordUsage(r, domain.UsageEvent{
		UserID:     a.currentUserID(r),
		Type:       domain.UsagePromptEnhance,
		Success:    err == nil,
		LatencyMS:  int(time.Since(start).Milliseconds()),
		Properties: props,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
