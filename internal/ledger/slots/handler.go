package slots

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// Handler exposes shell preferences over JSON.
type Handler struct {
	logger   *slog.Logger
	settings *Settings
}

func NewHandler(logger *slog.Logger, settings *Settings) *Handler {
	return &Handler{logger: logger, settings: settings}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings/display-older-than-one-year", h.showDisplayWindow)
	r.Put("/settings/display-older-than-one-year", h.setDisplayWindow)
}

type displayWindowView struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) showDisplayWindow(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.DisplayOlderThanOneYear(r.Context())
	if err != nil {
		h.logger.Error("read display window setting", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, displayWindowView{Enabled: enabled})
}

func (h *Handler) setDisplayWindow(w http.ResponseWriter, r *http.Request) {
	var form displayWindowView
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.settings.SetDisplayOlderThanOneYear(r.Context(), form.Enabled); err != nil {
		h.logger.Error("write display window setting", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, form)
}
