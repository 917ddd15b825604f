package handlers

import (
	"net/http"

	"artcreator/internal/domain"
)

type imageSizeResponse struct {
	domain.ImageSize
	Label       string `json:"label"`
	Orientation string `json:"orientation"`
	Default     bool   `json:"default"`
}

func (a *App) ImageSizes(w http.ResponseWriter, r *http.Request) {
	sizes := domain.ImageSizes()
	def := domain.DefaultImageSize()
	items := make([]imageSizeResponse, 0, len(sizes))
	for _, s := range sizes {
		items = append(items, imageSizeResponse{
			ImageSize:   s,
			Label:       s.Label(),
			Orientation: s.Orientation(),
			Default:     s.Name == def.Name,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
