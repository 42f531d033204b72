package transactions

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/slots"
	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// Handler exposes the transaction engine over JSON. The register honors the
// stored display window setting unless the request overrides it.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	settings *slots.Settings
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, settings *slots.Settings) *Handler {
	return &Handler{logger: logger, service: service, settings: settings, validate: validator.New()}
}

// MountRoutes registers transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/transactions", h.save)
	r.Delete("/transactions/{guid}", h.remove)
	r.Get("/accounts/{guid}/register", h.register)
	r.Get("/accounts/{guid}/counterpart", h.counterpart)
}

type saveForm struct {
	GUID               string `json:"guid"`
	CurrencyGUID       string `json:"currency_guid" validate:"required"`
	Num                string `json:"num"`
	PostDate           string `json:"post_date" validate:"required,len=14"`
	Description        string `json:"description" validate:"required"`
	TargetAccountGUID  string `json:"target_account_guid" validate:"required"`
	CounterAccountGUID string `json:"counter_account_guid" validate:"required"`
	Amount             string `json:"amount"`
	ValueNum           int64  `json:"value_num"`
	ValueDenom         int64  `json:"value_denom"`
	Memo               string `json:"memo"`
}

// amountOf resolves the form's amount: an exact num/denom pair when given,
// otherwise a decimal string scaled to cents.
func (f saveForm) amountOf() (numeric.Numeric, error) {
	if f.ValueDenom != 0 {
		return numeric.New(f.ValueNum, f.ValueDenom), nil
	}
	if f.Amount == "" {
		return numeric.Numeric{}, fmt.Errorf("%w: amount or value_num/value_denom required", httpx.ErrValidation)
	}
	d, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return numeric.Numeric{}, fmt.Errorf("%w: amount: %v", httpx.ErrValidation, err)
	}
	return numeric.FromDecimal(d, 100), nil
}

type registerView struct {
	TxGUID           string `json:"tx_guid"`
	Num              string `json:"num,omitempty"`
	PostDate         string `json:"post_date"`
	EnterDate        string `json:"enter_date,omitempty"`
	Description      string `json:"description"`
	Memo             string `json:"memo,omitempty"`
	ValueNum         int64  `json:"value_num"`
	ValueDenom       int64  `json:"value_denom"`
	Display          string `json:"display"`
	OtherAccountGUID string `json:"other_account_guid"`
	OtherAccountName string `json:"other_account_name"`
	Currency         string `json:"currency"`
}

func registerViewOf(row RegisterRow) registerView {
	return registerView{
		TxGUID:           row.TxGUID.Compact(),
		Num:              row.Num,
		PostDate:         row.PostDate.String(),
		EnterDate:        row.EnterDate.String(),
		Description:      row.Description,
		Memo:             row.Memo,
		ValueNum:         row.Value.Num,
		ValueDenom:       row.Value.Denom,
		Display:          row.Value.Decimal().StringFixed(2),
		OtherAccountGUID: row.OtherAccountGUID.Compact(),
		OtherAccountName: row.OtherAccountName,
		Currency:         row.CurrencyMnemonic,
	}
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var form saveForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, err)
		return
	}

	in, err := saveInputOf(form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Save(r.Context(), in); err != nil {
		h.logger.Error("save transaction", "guid", in.GUID.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"guid": in.GUID.Compact()})
}

func saveInputOf(form saveForm) (SaveInput, error) {
	amount, err := form.amountOf()
	if err != nil {
		return SaveInput{}, err
	}
	in := SaveInput{
		GUID:        ident.NewGUID(),
		Num:         form.Num,
		Description: form.Description,
		Amount:      amount,
		Memo:        form.Memo,
	}
	if form.GUID != "" {
		if in.GUID, err = ident.ParseGUID(form.GUID); err != nil {
			return SaveInput{}, err
		}
	}
	if in.CurrencyGUID, err = ident.ParseGUID(form.CurrencyGUID); err != nil {
		return SaveInput{}, err
	}
	if in.TargetAccountGUID, err = ident.ParseGUID(form.TargetAccountGUID); err != nil {
		return SaveInput{}, err
	}
	if in.CounterAccountGUID, err = ident.ParseGUID(form.CounterAccountGUID); err != nil {
		return SaveInput{}, err
	}
	if in.PostDate, err = ident.ParseTimestamp(form.PostDate); err != nil {
		return SaveInput{}, err
	}
	return in, nil
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), guid); err != nil {
		h.logger.Error("delete transaction", "guid", guid.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	rows, err := h.registerRows(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]registerView, 0, len(rows))
	for _, row := range rows {
		views = append(views, registerViewOf(row))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) registerRows(r *http.Request) ([]RegisterRow, error) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		return nil, err
	}
	includeOlder, err := h.settings.DisplayOlderThanOneYear(r.Context())
	if err != nil {
		return nil, err
	}
	if r.URL.Query().Get("all") == "1" {
		includeOlder = true
	}
	return h.service.Register(r.Context(), guid, includeOlder)
}

func (h *Handler) counterpart(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	description := r.URL.Query().Get("description")
	if description == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "description query parameter required")
		return
	}
	rows, err := h.service.FindCounterpart(r.Context(), guid, description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]registerView, 0, len(rows))
	for _, row := range rows {
		views = append(views, registerViewOf(row))
	}
	httpx.JSON(w, http.StatusOK, views)
}
