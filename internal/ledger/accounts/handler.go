package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/platform/httpx"
)

// Handler exposes the account store over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts/postable", h.listPostable)
	r.Get("/accounts/recent", h.listRecent)
	r.Get("/accounts/lookup", h.lookup)
	r.Get("/accounts/{guid}", h.show)
	r.Post("/accounts", h.create)
	r.Delete("/accounts/{guid}", h.remove)
}

type accountForm struct {
	GUID          string `json:"guid"`
	Name          string `json:"name" validate:"required"`
	Type          string `json:"type" validate:"required"`
	CommodityGUID string `json:"commodity_guid" validate:"required"`
	ParentGUID    string `json:"parent_guid"`
	Code          string `json:"code"`
	Description   string `json:"description"`
	Hidden        bool   `json:"hidden"`
	Placeholder   bool   `json:"placeholder"`
}

type accountView struct {
	GUID          string `json:"guid"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	CommodityGUID string `json:"commodity_guid,omitempty"`
	CommoditySCU  int64  `json:"commodity_scu"`
	ParentGUID    string `json:"parent_guid,omitempty"`
	Code          string `json:"code,omitempty"`
	Description   string `json:"description,omitempty"`
	Hidden        bool   `json:"hidden"`
	Placeholder   bool   `json:"placeholder"`
}

func viewOf(a Account) accountView {
	v := accountView{
		GUID:         a.GUID.Compact(),
		Name:         a.Name,
		Type:         string(a.Type),
		CommoditySCU: a.CommoditySCU,
		Code:         a.Code,
		Description:  a.Description,
		Hidden:       a.Hidden,
		Placeholder:  a.Placeholder,
	}
	if !a.CommodityGUID.IsNil() {
		v.CommodityGUID = a.CommodityGUID.Compact()
	}
	if !a.ParentGUID.IsNil() {
		v.ParentGUID = a.ParentGUID.Compact()
	}
	return v
}

func (h *Handler) listPostable(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAllPostable(r.Context())
	if err != nil {
		h.logger.Error("list postable accounts", "error", err)
		httpx.RespondError(w, err)
		return
	}
	views := make([]accountView, 0, len(list))
	for _, a := range list {
		views = append(views, viewOf(a))
	}
	httpx.JSON(w, http.StatusOK, views)
}

// listRecent lists accounts with a split posted inside the trailing window.
func (h *Handler) listRecent(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "days must be a positive integer")
			return
		}
		days = parsed
	}
	list, err := h.service.ListWithRecentActivity(r.Context(), days)
	if err != nil {
		h.logger.Error("list recent accounts", "error", err)
		httpx.RespondError(w, err)
		return
	}
	views := make([]accountView, 0, len(list))
	for _, a := range list {
		views = append(views, viewOf(a))
	}
	httpx.JSON(w, http.StatusOK, views)
}

// lookup resolves an account by exact name or by unique prefix. Ambiguity
// is reported, never guessed away.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	var (
		a   Account
		err error
	)
	switch {
	case r.URL.Query().Get("name") != "":
		a, err = h.service.FindUniqueByName(r.Context(), r.URL.Query().Get("name"))
	case r.URL.Query().Get("prefix") != "":
		a, err = h.service.FindUniquePrefix(r.Context(), r.URL.Query().Get("prefix"))
	case r.URL.Query().Get("top_level_kind") != "":
		var kind AccountType
		if kind, err = ParseAccountType(r.URL.Query().Get("top_level_kind")); err == nil {
			a, err = h.service.FindTopLevelByKind(r.Context(), kind)
		}
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name, prefix or top_level_kind query parameter required")
		return
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(a))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	a, err := h.service.Get(r.Context(), guid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(a))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form accountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, err)
		return
	}

	a, err := accountFromForm(form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Save(r.Context(), a); err != nil {
		h.logger.Error("save account", "name", a.Name, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(a))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	guid, err := ident.ParseGUID(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), guid); err != nil {
		h.logger.Error("delete account", "guid", guid.Compact(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func accountFromForm(form accountForm) (Account, error) {
	kind, err := ParseAccountType(form.Type)
	if err != nil {
		return Account{}, err
	}
	a := Account{
		GUID:        ident.NewGUID(),
		Name:        form.Name,
		Type:        kind,
		Code:        form.Code,
		Description: form.Description,
		Hidden:      form.Hidden,
		Placeholder: form.Placeholder,
	}
	if form.GUID != "" {
		if a.GUID, err = ident.ParseGUID(form.GUID); err != nil {
			return Account{}, err
		}
	}
	if a.CommodityGUID, err = ident.ParseGUID(form.CommodityGUID); err != nil {
		return Account{}, err
	}
	if form.ParentGUID != "" {
		if a.ParentGUID, err = ident.ParseGUID(form.ParentGUID); err != nil {
			return Account{}, err
		}
	}
	return a, nil
}
