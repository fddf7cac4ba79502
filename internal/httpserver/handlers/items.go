package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snapstash/internal/domain"
	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/metrics"
)

type listResponse struct {
	Items         []domain.Item `json:"items"`
	UndoAvailable bool          `json:"undoAvailable"`
	HistoryDepth  int           `json:"historyDepth"`
}

type addRequest struct {
	Category string `json:"category"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

type itemResponse struct {
	Item          *domain.Item `json:"item,omitempty"`
	Message       string       `json:"message"`
	UndoAvailable bool         `json:"undoAvailable"`
	HistoryDepth  int          `json:"historyDepth"`
}

// ListItems returns the saved items in insertion order.
func ListItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depth := d.Store.HistoryDepth()
		writeJSON(w, http.StatusOK, listResponse{
			Items:         d.Store.List(),
			UndoAvailable: depth > 0,
			HistoryDepth:  depth,
		})
	}
}

// AddItem saves the current tab under a category.
func AddItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		title := domain.PreviewTitle(req.Title, d.MaxPreviewLength)
		item, err := d.Store.Add(r.Context(), req.Category, req.URL, title)
		if err != nil {
			writeStoreError(w, d, metrics.OpAdd, err)
			return
		}
		recordSuccess(d, metrics.OpAdd)

		d.Logger.Info("item saved",
			logger.Int64("id", item.ID),
			logger.String("category", item.Category))

		writeJSON(w, http.StatusCreated, itemResponse{
			Item:          &item,
			Message:       domain.MsgItemSaved,
			UndoAvailable: true,
			HistoryDepth:  d.Store.HistoryDepth(),
		})
	}
}

// RemoveItem deletes one item by id.
func RemoveItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid item id")
			return
		}

		item, err := d.Store.Remove(r.Context(), id)
		if err != nil {
			writeStoreError(w, d, metrics.OpRemove, err)
			return
		}
		recordSuccess(d, metrics.OpRemove)

		d.Logger.Info("item deleted", logger.Int64("id", item.ID))

		writeJSON(w, http.StatusOK, itemResponse{
			Item:          &item,
			Message:       domain.MsgItemDeleted,
			UndoAvailable: true,
			HistoryDepth:  d.Store.HistoryDepth(),
		})
	}
}

// ClearItems empties the list. The popup asks the user first, so the
// request must carry confirm=true.
func ClearItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !ok {
			writeMessage(w, http.StatusBadRequest, domain.MsgConfirmClear)
			return
		}

		if err := d.Store.ClearAll(r.Context()); err != nil {
			writeStoreError(w, d, metrics.OpClearAll, err)
			return
		}
		recordSuccess(d, metrics.OpClearAll)

		d.Logger.Info("all items cleared")

		writeJSON(w, http.StatusOK, itemResponse{
			Message:       domain.MsgAllCleared,
			UndoAvailable: true,
			HistoryDepth:  d.Store.HistoryDepth(),
		})
	}
}
