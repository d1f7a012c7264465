package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError answers every failure as {"error": message}. 5xx errors are also reported
// through errs.Handle.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagTooLarge):
		logger.Warn("Request Entity Too Large", "error", err)
		writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})

	case goerr.HasTag(err, errs.TagConfiguration):
		logger.Warn("Configuration Error", "error", err)
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case goerr.HasTag(err, errs.TagNotFound):
		logger.Warn("Session Not Found", "error", err)
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case goerr.HasTag(err, errs.TagValidation),
		goerr.HasTag(err, errs.TagInvalidRequest),
		goerr.HasTag(err, errs.TagNoAnalysis):
		logger.Warn("Bad Request", "error", err)
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case goerr.HasTag(err, errs.TagProvider):
		errs.Handle(r.Context(), err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: err.Error()})

	default:
		errs.Handle(r.Context(), err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(r.Context()).Error("failed to write response", "error", err)
	}
}
