// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/benbjohnson/clock"

	"example.com/exercisetracker/internal/observability"
	"example.com/exercisetracker/internal/validate"
)

// AthleteRepository captures athlete persistence. Lookups return (nil, nil) when absent.
type AthleteRepository interface {
	InsertAthlete(ctx context.Context, username string) (*Athlete, error)
	FindAthleteByID(ctx context.Context, id string) (*Athlete, error)
	FindAthleteByUsername(ctx context.Context, username string) (*Athlete, error)
	ListAthletes(ctx context.Context) ([]Athlete, error)
}

// ExerciseRepository captures exercise persistence. It performs no validation.
type ExerciseRepository interface {
	InsertExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	QueryExercises(ctx context.Context, userID string, filter DateFilter, limit int) ([]LogEntry, error)
}

// Repository is implemented by every store backend.
type Repository interface {
	AthleteRepository
	ExerciseRepository
}

// Service orchestrates athlete and exercise workflows.
type Service struct {
	repo  Repository
	clock clock.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for default exercise dates.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAthlete creates an athlete with a unique, non-empty username.
func (s *Service) RegisterAthlete(ctx context.Context, username string) (*Athlete, error) {
	if strings.TrimSpace(username) == "" {
		return nil, invalid("username", MsgUsernameRequired)
	}

	existing, err := s.repo.FindAthleteByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	// The store enforces uniqueness too; a concurrent registration that wins
	// the race surfaces here as ErrDuplicateUsername.
	athlete, err := s.repo.InsertAthlete(ctx, username)
	if err != nil {
		return nil, err
	}
	observability.RecordAthleteRegistered()
	return athlete, nil
}

// GetAthlete fetches an athlete by id.
func (s *Service) GetAthlete(ctx context.Context, id string) (*Athlete, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrAthleteNotFound
	}
	athlete, err := s.repo.FindAthleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, ErrAthleteNotFound
	}
	return athlete, nil
}

// ListAthletes returns every registered athlete in store order.
func (s *Service) ListAthletes(ctx context.Context) ([]Athlete, error) {
	return s.repo.ListAthletes(ctx)
}

// AddExerciseInput carries the raw request fields for a new exercise.
type AddExerciseInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// LoggedExercise is a persisted exercise together with its owner.
type LoggedExercise struct {
	Exercise Exercise
	Athlete  Athlete
}

// AddExercise validates and records an exercise for an existing athlete. The
// date defaults to today when omitted.
func (s *Service) AddExercise(ctx context.Context, input AddExerciseInput) (*LoggedExercise, error) {
	athlete, err := s.GetAthlete(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	duration, ok := validate.ParseNumber(input.Duration)
	if !ok || duration <= 0 {
		return nil, invalid("duration", MsgInvalidDuration)
	}

	date := StartOfDay(s.clock.Now())
	if raw := strings.TrimSpace(input.Date); raw != "" {
		parsed, ok := validate.ParseDate(raw)
		if !ok {
			return nil, invalid("date", MsgInvalidDate)
		}
		date = parsed
	}

	stored, err := s.repo.InsertExercise(ctx, Exercise{
		UserID:      athlete.ID,
		Description: input.Description,
		Duration:    duration,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}
	observability.RecordExerciseLogged(stored.Duration)
	return &LoggedExercise{Exercise: *stored, Athlete: *athlete}, nil
}

// ExerciseLog is the filtered log of one athlete.
type ExerciseLog struct {
	Athlete Athlete
	Query   LogQuery
	Entries []LogEntry
}

// LogParams carries the raw optional log parameters of a request.
type LogParams struct {
	From   string
	To     string
	Limit  string
	Strict bool
}

// GetExerciseLog resolves the athlete, then validates params and returns the
// matching entries. An unknown athlete is reported before malformed bounds.
func (s *Service) GetExerciseLog(ctx context.Context, userID string, params LogParams) (*ExerciseLog, error) {
	athlete, err := s.GetAthlete(ctx, userID)
	if err != nil {
		return nil, err
	}

	q, err := BuildLogQuery(params.From, params.To, params.Limit, params.Strict)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.QueryExercises(ctx, athlete.ID, q.Filter, q.Limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []LogEntry{}
	}
	return &ExerciseLog{Athlete: *athlete, Query: q, Entries: entries}, nil
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
