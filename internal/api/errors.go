package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/domain"
)

// Plain-text response bodies clients match on.
const (
	msgUsernameTaken  = "Username already taken"
	msgUnknownUser    = "Unknown userId"
	msgInvalidBody    = "Invalid request body"
	msgInternalServer = "Internal Server Error"
)

// statusError is a failure that already knows its HTTP status.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return e.message
}

// writeFailure is the single place that maps errors to a status and a plain-text body.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, message := h.classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithFields(logrus.Fields{
			"err":    err,
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	writeText(w, status, message)
}

func (h *Handler) classify(err error) (int, string) {
	var serr *statusError
	if errors.As(err, &serr) {
		return serr.status, serr.message
	}
	if verr, ok := domain.IsValidation(err); ok {
		if verr.FromStore {
			return http.StatusBadRequest, verr.Message
		}
		return h.domainStatus(http.StatusBadRequest), verr.Message
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return h.domainStatus(http.StatusConflict), msgUsernameTaken
	case errors.Is(err, domain.ErrAthleteNotFound):
		return h.domainStatus(http.StatusNotFound), msgUnknownUser
	}
	return http.StatusInternalServerError, msgInternalServer
}

func (h *Handler) domainStatus(status int) int {
	if h.opts.LegacyStatusCodes {
		return http.StatusOK
	}
	return status
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
