package commodities

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// Handler exposes the commodity store over JSON.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers commodity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/commodities", h.list)
	r.Get("/commodities/{guid}", h.show)
}

type commodityView struct {
	GUID      string `json:"guid"`
	Namespace string `json:"namespace"`
	Mnemonic  string `json:"mnemonic"`
	Fullname  string `json:"fullname,omitempty"`
	Fraction  int64  `json:"fraction"`
}

func viewOf(c Commodity) commodityView {
	return commodityView{
		GUID:      c.GUID.Compact(),
		Namespace: c.Namespace,
		Mnemonic:  c.Mnemonic,
		Fullname:  c.Fullname,
		Fraction:  c.Fraction,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list commodities", "error", err)
		httpx.RespondError(w, err)
		return
	}
	views := make([]commodityView, 0, len(all))
	for _, c := range all {
		views = append(views, viewOf(c))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.repo.Get(r.Context(), guid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(c))
}
