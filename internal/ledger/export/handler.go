package export

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/transactions"
	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// RegisterSource supplies the rows behind a register download.
type RegisterSource interface {
	Register(ctx context.Context, accountGUID ident.GUID, includeOlderThanOneYear bool) ([]transactions.RegisterRow, error)
}

// Handler serves ledger downloads.
type Handler struct {
	logger *slog.Logger
	source RegisterSource
}

func NewHandler(logger *slog.Logger, source RegisterSource) *Handler {
	return &Handler{logger: logger, source: source}
}

// MountRoutes registers download routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts/{guid}/register.csv", h.registerCSV)
}

// registerCSV always exports the full register; a download is an archive,
// not a display window.
func (h *Handler) registerCSV(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.source.Register(r.Context(), guid, true)
	if err != nil {
		h.logger.Error("export register", "account", guid.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="register.csv"`)
	if err := WriteRegister(w, rows); err != nil {
		h.logger.Error("write register csv", "account", guid.Compact(), "error", err)
	}
}
