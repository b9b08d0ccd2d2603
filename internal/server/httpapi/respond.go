package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accountd/internal/server/services"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// statusFor maps a workflow failure to the status the API reports.
// Conflicts and failed logins are reported as 400; the bearer gate is the
// only source of 401.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindBadRequest, services.KindConflict, services.KindUnauthorized:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *services.Error
	if !errors.As(err, &e) {
		h.log.Error(r.Context(), "unexpected error", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, services.MsgServerError)
		return
	}
	if e.Kind == services.KindInternal {
		writeMessage(w, http.StatusInternalServerError, services.MsgServerError)
		return
	}
	writeMessage(w, statusFor(e.Kind), e.Message)
}
