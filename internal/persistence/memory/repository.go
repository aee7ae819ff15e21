// Package memory provides an in-process store for local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository keeps athletes and exercises in insertion order.
type Repository struct {
	mu         sync.RWMutex
	athletes   []domain.Athlete
	byID       map[string]int
	byUsername map[string]int
	exercises  []domain.Exercise
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		byID:       make(map[string]int),
		byUsername: make(map[string]int),
	}
}

// InsertAthlete implements domain.AthleteRepository. The uniqueness check and
// the insert happen under one lock.
func (r *Repository) InsertAthlete(ctx context.Context, username string) (*domain.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[username]; taken {
		return nil, domain.ErrDuplicateUsername
	}

	athlete := domain.Athlete{ID: uuid.NewString(), Username: username}
	r.athletes = append(r.athletes, athlete)
	r.byID[athlete.ID] = len(r.athletes) - 1
	r.byUsername[username] = len(r.athletes) - 1
	return &athlete, nil
}

// FindAthleteByID implements domain.AthleteRepository.
func (r *Repository) FindAthleteByID(ctx context.Context, id string) (*domain.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	athlete := r.athletes[idx]
	return &athlete, nil
}

// FindAthleteByUsername implements domain.AthleteRepository.
func (r *Repository) FindAthleteByUsername(ctx context.Context, username string) (*domain.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	athlete := r.athletes[idx]
	return &athlete, nil
}

// ListAthletes implements domain.AthleteRepository.
func (r *Repository) ListAthletes(ctx context.Context) ([]domain.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Athlete, len(r.athletes))
	copy(out, r.athletes)
	return out, nil
}

// InsertExercise implements domain.ExerciseRepository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	r.exercises = append(r.exercises, exercise)
	return &exercise, nil
}

// QueryExercises implements domain.ExerciseRepository.
func (r *Repository) QueryExercises(ctx context.Context, userID string, filter domain.DateFilter, limit int) ([]domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.LogEntry, 0)
	for _, ex := range r.exercises {
		if limit > 0 && len(out) == limit {
			break
		}
		if ex.UserID != userID || !filter.Matches(ex.Date) {
			continue
		}
		out = append(out, domain.LogEntry{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        ex.Date,
		})
	}
	return out, nil
}
