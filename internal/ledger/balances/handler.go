package balances

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// Handler serves balance-annotated account views.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers balance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.listWithBalances)
	r.Get("/accounts/{guid}/balance", h.balanceOf)
	r.Get("/report/window", h.window)
}

type balanceView struct {
	GUID     string `json:"guid"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Num      int64  `json:"balance_num"`
	Denom    int64  `json:"balance_denom"`
	Display  string `json:"display"`
	Mnemonic string `json:"currency"`
}

// asOfParam parses the optional ?as_of= stamp; zero means today.
func asOfParam(r *http.Request) (ident.Timestamp, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return ident.Timestamp{}, nil
	}
	return ident.ParseTimestamp(raw)
}

func (h *Handler) listWithBalances(w http.ResponseWriter, r *http.Request) {
	asOf, err := asOfParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ForActiveAccounts(r.Context(), asOf)
	if err != nil {
		h.logger.Error("list balances", "error", err)
		httpx.RespondError(w, err)
		return
	}

	views := make([]balanceView, 0, len(list))
	for _, ab := range list {
		views = append(views, balanceView{
			GUID:     ab.Account.GUID.Compact(),
			Name:     ab.Account.Name,
			Type:     string(ab.Account.Type),
			Num:      ab.Balance.Num,
			Denom:    ab.Balance.Denom,
			Display:  ab.Balance.Decimal().StringFixed(2),
			Mnemonic: ab.Mnemonic,
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) balanceOf(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	balance, err := h.service.Of(r.Context(), guid, asOf)
	if err != nil {
		h.logger.Error("compute balance", "account", guid.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"balance_num":   balance.Num,
		"balance_denom": balance.Denom,
		"display":       balance.Decimal().StringFixed(2),
	})
}

type windowRowView struct {
	TxGUID      string `json:"tx_guid"`
	PostDate    string `json:"post_date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Num         int64  `json:"value_num"`
	Denom       int64  `json:"value_denom"`
	Display     string `json:"display"`
}

type categoryTotalView struct {
	Category string `json:"category"`
	Num      int64  `json:"total_num"`
	Denom    int64  `json:"total_denom"`
	Display  string `json:"display"`
}

func (h *Handler) window(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(r.URL.Query().Get("account"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, err := ident.ParseTimestamp(r.URL.Query().Get("from"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	thru, err := ident.ParseTimestamp(r.URL.Query().Get("thru"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	rows, totals, err := h.service.Window(r.Context(), guid, from, thru)
	if err != nil {
		h.logger.Error("window report", "account", guid.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}

	rowViews := make([]windowRowView, 0, len(rows))
	for _, row := range rows {
		rowViews = append(rowViews, windowRowView{
			TxGUID:      row.TxGUID.Compact(),
			PostDate:    row.PostDate.String(),
			Description: row.Description,
			Category:    row.Category,
			Num:         row.Value.Num,
			Denom:       row.Value.Denom,
			Display:     row.Value.Decimal().StringFixed(2),
		})
	}
	totalViews := make([]categoryTotalView, 0, len(totals))
	for _, total := range totals {
		totalViews = append(totalViews, categoryTotalView{
			Category: total.Category,
			Num:      total.Total.Num,
			Denom:    total.Total.Denom,
			Display:  total.Total.Decimal().StringFixed(2),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":   rowViews,
		"totals": totalViews,
	})
}
