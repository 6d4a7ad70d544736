// Package responses writes the JSON envelopes every endpoint shares.
package responses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/types"
)

// WriteSuccess writes a success envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError maps err to its HTTP status and public shape. Internal
// details never leak: only codes whose metadata allows details carry
// them to the client. Server-side codes get the full chain logged.
func WriteError(ctx context.Context, w http.ResponseWriter, log *logger.Logger, err error) {
	appErr := errors.As(err)
	code := appErr.Code()
	meta := errors.MetadataFor(code)

	if meta.HTTPStatus >= http.StatusInternalServerError && log != nil {
		log.Error(log.WithField(ctx, "error_dump", errors.Dump(err)), "request failed", err)
	}

	body := types.APIError{
		Code:    string(code),
		Message: meta.PublicMessage,
	}
	if appErr != nil && appErr.Message() != "" && meta.HTTPStatus < http.StatusInternalServerError {
		body.Message = appErr.Message()
	}
	if meta.DetailsAllowed && appErr != nil {
		body.Details = appErr.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: body})
}
