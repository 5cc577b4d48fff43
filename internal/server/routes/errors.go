package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/pkg/apperr"
)

// errorResponse is the {detail, kind} shape every error response uses.
type errorResponse struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
}

// statusFor maps an apperr.Kind to the HTTP status the error taxonomy
// assigns it.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotReady:
		return http.StatusServiceUnavailable
	case apperr.Timeout:
		return http.StatusGatewayTimeout
	case apperr.Upstream, apperr.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the sole place component errors become HTTP responses.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	return c.JSON(statusFor(kind), errorResponse{Detail: err.Error(), Kind: string(kind)})
}

// badRequest builds a Validation-kind error for request decoding failures
// that occur before a component ever sees the request.
func badRequest(detail string) *apperr.Error {
	return apperr.Validationf("%s", detail)
}
