package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/balances"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/export"
	"github.com/keepbook/keepbook/internal/ledger/slots"
	"github.com/keepbook/keepbook/internal/ledger/transactions"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AccountsHandler     *accounts.Handler
	CommoditiesHandler  *commodities.Handler
	BalancesHandler     *balances.Handler
	TransactionsHandler *transactions.Handler
	SettingsHandler     *slots.Handler
	ExportHandler       *export.Handler
}

// NewRouter constructs the chi.Router with keepbook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AccountsHandler != nil {
		params.AccountsHandler.MountRoutes(r)
	}
	if params.CommoditiesHandler != nil {
		params.CommoditiesHandler.MountRoutes(r)
	}
	if params.BalancesHandler != nil {
		params.BalancesHandler.MountRoutes(r)
	}
	if params.TransactionsHandler != nil {
		params.TransactionsHandler.MountRoutes(r)
	}
	if params.SettingsHandler != nil {
		params.SettingsHandler.MountRoutes(r)
	}
	if params.ExportHandler != nil {
		params.ExportHandler.MountRoutes(r)
	}

	return r
}
