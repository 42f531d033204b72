package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
)

// ErrValidation marks request-shape failures found before the ledger is
// touched.
var ErrValidation = errors.New("validation failed")

// RespondError maps ledger errors to RFC7807 responses. Unrecognized errors
// become an opaque 500; their detail belongs in the server log only.
func RespondError(w http.ResponseWriter, err error) {
	var (
		ambiguous  *shared.AmbiguousError
		rowCount   *shared.RowCountError
		validation validator.ValidationErrors
	)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &ambiguous):
		Problem(w, http.StatusConflict, "Ambiguous Result", err.Error())
	case errors.As(err, &rowCount):
		Problem(w, http.StatusConflict, "Unexpected Row Count", err.Error())
	case errors.Is(err, ident.ErrInvalidFormat):
		Problem(w, http.StatusBadRequest, "Invalid Format", err.Error())
	case errors.Is(err, shared.ErrMixedDenominator):
		Problem(w, http.StatusUnprocessableEntity, "Mixed Denominator", err.Error())
	case errors.As(err, &validation), errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
