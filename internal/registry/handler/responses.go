package handler

import (
	"encoding/json"
	"net/http"

	"carehub/internal/platform/middleware"
	dErrors "carehub/pkg/domain-errors"
)

// ReputationResponse answers GET /profiles/{identity}/reputation. Identities
// without a profile report a score of 0 rather than an error.
type ReputationResponse struct {
	Identity        string `json:"identity"`
	ReputationScore uint64 `json:"reputation_score"`
}

// PlatformResponse answers GET /platform.
type PlatformResponse struct {
	Admin             string `json:"admin"`
	Paused            bool   `json:"paused"`
	ReputationUpdater string `json:"reputation_updater,omitempty"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// statusForCode maps the domain error taxonomy onto HTTP statuses.
var statusForCode = map[dErrors.Code]int{
	dErrors.CodeNotAuthorized:     http.StatusForbidden,
	dErrors.CodeNotFound:          http.StatusNotFound,
	dErrors.CodeProfileExists:     http.StatusConflict,
	dErrors.CodeAlreadyVerified:   http.StatusConflict,
	dErrors.CodeNotVerified:       http.StatusConflict,
	dErrors.CodeMaxCertifications: http.StatusUnprocessableEntity,
	dErrors.CodeInvalidInput:      http.StatusBadRequest,
	dErrors.CodeInvalidReputation: http.StatusBadRequest,
	dErrors.CodeZeroAddress:       http.StatusBadRequest,
	dErrors.CodeValidation:        http.StatusBadRequest,
	dErrors.CodePaused:            http.StatusServiceUnavailable,
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError && h.logger != nil {
		h.logger.ErrorContext(r.Context(), "registry operation failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	description := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak infrastructure details to clients.
		description = "internal error"
	}
	h.writeStatus(w, status, string(code), description)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Description: description})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
