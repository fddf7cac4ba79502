package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
)

type undoResponse struct {
	Action        domain.Action `json:"action"`
	Message       string        `json:"message"`
	Item          *domain.Item  `json:"item,omitempty"`
	Items         []domain.Item `json:"items"`
	UndoAvailable bool          `json:"undoAvailable"`
	HistoryDepth  int           `json:"historyDepth"`
}

type historyResponse struct {
	Depth   int                   `json:"depth"`
	Entries []domain.HistoryEntry `json:"entries"`
}

// Undo reverts the most recent add, delete or clear.
func Undo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Store.Undo(r.Context())
		if err != nil {
			writeStoreError(w, d, metrics.OpUndo, err)
			return
		}
		recordSuccess(d, metrics.OpUndo)

		d.Logger.Info("action undone", logger.String("action", string(res.Action)))

		depth := d.Store.HistoryDepth()
		writeJSON(w, http.StatusOK, undoResponse{
			Action:        res.Action,
			Message:       domain.UndoMessage(res.Action),
			Item:          res.Item,
			Items:         res.Items,
			UndoAvailable: depth > 0,
			HistoryDepth:  depth,
		})
	}
}

// History lists the undo stack, oldest first.
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := d.Store.History()
		writeJSON(w, http.StatusOK, historyResponse{
			Depth:   len(entries),
			Entries: entries,
		})
	}
}
