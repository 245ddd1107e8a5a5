package httptransport

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

type AdminHandlers struct {
	store Pinger
}

func NewAdminHandlers(st Pinger) *AdminHandlers {
	return &AdminHandlers{store: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health check: store ping failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}
