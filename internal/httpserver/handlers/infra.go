package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	Mode         string `json:"mode,omitempty"`
	Loaded       *int   `json:"loaded,omitempty"`
	LastReload   string `json:"last_reload,omitempty"`
	Items        *int   `json:"items,omitempty"`
	HistoryDepth *int   `json:"history_depth,omitempty"`
	Error        string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the backend, the record store and the category set.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"backend":    checkBackend(r.Context(), d),
			"store":      storeStatus(d),
			"categories": categoriesStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Without a backend nothing can be saved
	if backend, exists := components["backend"]; exists && !backend.OK {
		return "critical"
	}

	// A failed category load falls back to the previous set
	if cats, exists := components["categories"]; exists && !cats.OK {
		return "degraded"
	}

	return "operational"
}

func checkBackend(parent context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.BackendName, Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.BackendName}
}

func storeStatus(d deps.Deps) componentStatus {
	items := d.Store.Len()
	depth := d.Store.HistoryDepth()
	return componentStatus{OK: true, Items: &items, HistoryDepth: &depth}
}

func categoriesStatus(d deps.Deps) componentStatus {
	count := d.Categories.Count()
	status := componentStatus{OK: count > 0, Loaded: &count, Mode: "builtin"}

	if d.CategoryFile != "" {
		status.Mode = "file"
		status.LastReload = "never"
		if t := d.Categories.GetLastReload(); !t.IsZero() {
			status.LastReload = t.UTC().Format("2006-01-02 15:04:05")
		}
	}
	return status
}
