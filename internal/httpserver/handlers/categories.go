package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
)

type categoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	LastReload string            `json:"last_reload,omitempty"`
}

// Categories returns the selectable categories in display order.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := categoriesResponse{Categories: d.Categories.All()}
		if t := d.Categories.GetLastReload(); !t.IsZero() {
			resp.LastReload = t.UTC().Format("2006-01-02 15:04:05")
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
