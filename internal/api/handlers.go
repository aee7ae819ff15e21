// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"embed"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/domain"
)

//go:embed views/index.html
var views embed.FS

// Options toggles compatibility behaviour.
type Options struct {
	// LegacyStatusCodes answers validation, duplicate and unknown-user errors with 200.
	LegacyStatusCodes bool
	// StrictLogFilters rejects malformed from/to log bounds instead of dropping them.
	StrictLogFilters bool
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  logrus.FieldLogger
	opts    Options
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger logrus.FieldLogger, opts Options) *Handler {
	return &Handler{service: service, logger: logger, opts: opts}
}

// RegisterRoutes wires endpoints and the 404/405 fallbacks to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/exercise").Subrouter()
	api.HandleFunc("/new-user", h.newUser).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/add", h.addExercise).Methods(http.MethodPost)
	api.HandleFunc("/log", h.exerciseLog).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
}

func index(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, views, "views/index.html")
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) newUser(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if err := bindBody(r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	athlete, err := h.service.RegisterAthlete(r.Context(), req.Username)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAthleteView(*athlete))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	athletes, err := h.service.ListAthletes(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	resp := make([]AthleteView, 0, len(athletes))
	for _, a := range athletes {
		resp = append(resp, toAthleteView(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addExercise(w http.ResponseWriter, r *http.Request) {
	var req AddExerciseRequest
	if err := bindBody(r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	logged, err := h.service.AddExercise(r.Context(), domain.AddExerciseInput{
		UserID:      req.UserID,
		Description: req.Description,
		Duration:    req.Duration,
		Date:        req.Date,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExerciseView{
		ID:          logged.Exercise.ID,
		Username:    logged.Athlete.Username,
		Date:        domain.FormatDate(logged.Exercise.Date),
		Duration:    logged.Exercise.Duration,
		Description: logged.Exercise.Description,
	})
}

func (h *Handler) exerciseLog(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := bindValues(r.URL.Query(), &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	log, err := h.service.GetExerciseLog(r.Context(), req.UserID, domain.LogParams{
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
		Strict: h.opts.StrictLogFilters,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	resp := LogView{
		ID:       log.Athlete.ID,
		Username: log.Athlete.Username,
		From:     log.Query.From,
		To:       log.Query.To,
		Count:    len(log.Entries),
		Log:      make([]LogEntryView, 0, len(log.Entries)),
	}
	for _, entry := range log.Entries {
		resp.Log = append(resp.Log, LogEntryView{
			Description: entry.Description,
			Duration:    entry.Duration,
			Date:        domain.FormatDate(entry.Date),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeFailure(w, r, &statusError{status: http.StatusNotFound, message: "not found"})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeFailure(w, r, &statusError{status: http.StatusMethodNotAllowed, message: "method not allowed"})
}

// NewUserRequest is the payload for POST /api/exercise/new-user.
type NewUserRequest struct {
	Username string `form:"username"`
}

// AddExerciseRequest is the payload for POST /api/exercise/add. Duration and
// date stay raw so the service can report malformed values.
type AddExerciseRequest struct {
	UserID      string `form:"userId"`
	Description string `form:"description"`
	Duration    string `form:"duration"`
	Date        string `form:"date"`
}

// LogRequest holds the query parameters of GET /api/exercise/log.
type LogRequest struct {
	UserID string `form:"userId"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  string `form:"limit"`
}

// AthleteView is the JSON shape of an athlete.
type AthleteView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// ExerciseView is the response body for a newly added exercise.
type ExerciseView struct {
	ID          string  `json:"_id"`
	Username    string  `json:"username"`
	Date        string  `json:"date"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
}

// LogEntryView is one entry of an exercise log.
type LogEntryView struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogView is the response body for GET /api/exercise/log. From and To are
// omitted when absent or dropped.
type LogView struct {
	ID       string         `json:"_id"`
	Username string         `json:"username"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to,omitempty"`
	Count    int            `json:"count"`
	Log      []LogEntryView `json:"log"`
}

func toAthleteView(a domain.Athlete) AthleteView {
	return AthleteView{ID: a.ID, Username: a.Username}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
