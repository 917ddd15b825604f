package handlers

import (
	"net/http"
	"strconv"

	"artcreator/internal/domain"
)

type galleryResponse struct {
	Items  []domain.GalleryEntry `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (a *App) PublicGallery(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := a.Gallery.ListPublic(r.Context(), limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, galleryResponse{Items: items, Limit: limit, Offset: offset})
}

func (a *App) MyImages(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, offset := pageParams(r)
	items, err := a.Gallery.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, galleryResponse{Items: items, Limit: limit, Offset: offset})
}

// pageParams reads limit and offset, defaulting to 20 and 0 and capping the
// limit at 100.
func pageParams(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
