package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/snapstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snapstash/internal/logger"
	"github.com/MrSnakeDoc/snapstash/internal/utils"
)

type reloadResponse struct {
	Message string `json:"message"`
}

// Reload triggers a manual reload of the category file
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remote := utils.ClientIP(r, d.TrustProxy)

		if d.ReloadTrigger == nil {
			writeMessage(w, http.StatusConflict, "no category file configured")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual category reload triggered via endpoint",
				logger.String("remote_ip", remote))
			writeJSON(w, http.StatusAccepted, reloadResponse{Message: "Reload triggered successfully"})
		default:
			d.Logger.Warn("category reload already in progress",
				logger.String("remote_ip", remote))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Message: "Reload already in progress, please wait"})
		}
	}
}
