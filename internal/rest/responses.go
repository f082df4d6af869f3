package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/internal/store"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps an error onto its status code. Unexpected errors are logged and their message is hidden from the client
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, kind := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		message = "internal server error"
	}

	respondJSON(w, status, ErrorResponse{
		Error:     message,
		Type:      kind,
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrCapacityExceeded):
		return http.StatusBadRequest, "capacity_exceeded"
	case isInvalidInput(err):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, model.ErrDuplicateRoll), errors.Is(err, store.ErrRollTaken):
		return http.StatusConflict, "duplicate_roll"
	case errors.Is(err, model.ErrSearchBudgetExceeded):
		return http.StatusUnprocessableEntity, "search_budget_exceeded"
	case errors.Is(err, model.ErrNoValidArrangement):
		return http.StatusUnprocessableEntity, "no_valid_arrangement"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func isInvalidInput(err error) bool {
	for _, target := range []error{
		errValidation,
		service.ErrInvalidRequest,
		model.ErrInvalidRange,
		model.ErrInvalidShape,
		model.ErrUnknownMode,
		roll.ErrInvalidFormat,
		roll.ErrInvalidSerial,
		roll.ErrBranchMismatch,
		roll.ErrUnknownBranch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
