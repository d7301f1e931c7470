package httpserver

import (
	"context"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_bff/internal/domain"
)

var errInternal = errors.New("internal error")

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// writeError maps the domain taxonomy to a status and a short code.
// Provider bodies never reach the client, only the provider's own message.
// notFound is the generic message for ErrNotFound; restricted and missing look the same.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		status int
		code   string
		msg    string
		ve     *domain.ValidationError
		ce     *domain.ConfigurationError
		ue     *domain.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		status, code, msg = http.StatusBadRequest, "invalid_params", ve.Error()
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		status, code, msg = http.StatusNotFound, "not_found", notFound
	case errors.As(err, &ce):
		status, code, msg = http.StatusInternalServerError, "configuration", "Service is not configured: "+ce.Secret+" is missing"
	case errors.Is(err, domain.ErrUpstreamUnauthorized):
		status, code, msg = http.StatusUnauthorized, "unauthorized", "The provider rejected our credentials"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = http.StatusGatewayTimeout, "timeout", "Request timed out"
	case errors.As(err, &ue):
		msg = ue.Message
		if msg == "" {
			msg = "Upstream request failed"
		}
		status, code = http.StatusBadGateway, "upstream"
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		status, code, msg = 499, "canceled", "Request canceled"
	default:
		status, code, msg = http.StatusInternalServerError, "internal", "Internal error"
	}

	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Str("code", code).
		Msg("request failed")

	var body errorBody
	body.Error.Message = msg
	body.Error.Code = code
	writeJSON(w, status, body)
}
