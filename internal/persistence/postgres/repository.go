// Package postgres provides the PostgreSQL-backed store and its outbox writes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/events"
)

// Repository provides Postgres-backed persistence for athletes, exercises and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository. The pool is owned by the caller.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertAthlete stores a new athlete and records an athlete.registered event.
func (r *Repository) InsertAthlete(ctx context.Context, username string) (athlete *domain.Athlete, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	created := domain.Athlete{ID: uuid.NewString(), Username: username}
	if _, err = tx.Exec(ctx, `INSERT INTO athletes (id, username, created_at) VALUES ($1,$2,$3)`, created.ID, created.Username, now); err != nil {
		return nil, translate(err)
	}

	if err = insertOutbox(ctx, tx, "athlete", created.ID, events.TypeAthleteRegistered, events.AthleteRegistered{
		AthleteID:    created.ID,
		Username:     created.Username,
		RegisteredAt: now,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return &created, nil
}

// FindAthleteByID returns (nil, nil) when no athlete has the id.
func (r *Repository) FindAthleteByID(ctx context.Context, id string) (*domain.Athlete, error) {
	return r.findAthlete(ctx, `SELECT id, username FROM athletes WHERE id=$1`, id)
}

// FindAthleteByUsername returns (nil, nil) when the username is free.
func (r *Repository) FindAthleteByUsername(ctx context.Context, username string) (*domain.Athlete, error) {
	return r.findAthlete(ctx, `SELECT id, username FROM athletes WHERE username=$1`, username)
}

func (r *Repository) findAthlete(ctx context.Context, query string, arg string) (*domain.Athlete, error) {
	var athlete domain.Athlete
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&athlete.ID, &athlete.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: find athlete: %w", err)
	}
	return &athlete, nil
}

// ListAthletes returns athletes in registration order.
func (r *Repository) ListAthletes(ctx context.Context) ([]domain.Athlete, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username FROM athletes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list athletes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Athlete, 0)
	for rows.Next() {
		var athlete domain.Athlete
		if err := rows.Scan(&athlete.ID, &athlete.Username); err != nil {
			return nil, fmt.Errorf("postgres: scan athlete: %w", err)
		}
		out = append(out, athlete)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list athletes: %w", err)
	}
	return out, nil
}

// InsertExercise stores the exercise and records an exercise.logged event.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (stored *domain.Exercise, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	exercise.ID = uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO exercises (id, user_id, description, duration, date, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
		now,
	)
	if err != nil {
		return nil, translate(err)
	}

	if err = insertOutbox(ctx, tx, "exercise", exercise.ID, events.TypeExerciseLogged, events.ExerciseLogged{
		ExerciseID:  exercise.ID,
		AthleteID:   exercise.UserID,
		Description: exercise.Description,
		DurationMin: exercise.Duration,
		Date:        exercise.Date.Format("2006-01-02"),
		LoggedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return &exercise, nil
}

// QueryExercises returns the user's entries in insertion order. limit <= 0 means unlimited.
func (r *Repository) QueryExercises(ctx context.Context, userID string, filter domain.DateFilter, limit int) ([]domain.LogEntry, error) {
	query, args := buildLogQuery(userID, filter, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query exercises: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LogEntry, 0)
	for rows.Next() {
		var entry domain.LogEntry
		if err := rows.Scan(&entry.Description, &entry.Duration, &entry.Date); err != nil {
			return nil, fmt.Errorf("postgres: scan exercise: %w", err)
		}
		entry.Date = entry.Date.UTC()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: query exercises: %w", err)
	}
	return out, nil
}

func buildLogQuery(userID string, filter domain.DateFilter, limit int) (string, []interface{}) {
	args := []interface{}{userID}
	query := `SELECT description, duration, date FROM exercises WHERE user_id=$1`

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND date < $%d`, len(args))
	}

	query += ` ORDER BY seq`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return query, args
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(aggregateID, payload),
		body,
		fmt.Sprintf("%s:%s", aggregateID, eventType),
	)
	if err != nil {
		return fmt.Errorf("postgres: record outbox event: %w", err)
	}
	return nil
}

// translate maps constraint violations onto domain errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("postgres: %w", err)
	}

	switch pgErr.Code {
	case "23505":
		if pgErr.ConstraintName == "athletes_username_key" {
			return domain.ErrDuplicateUsername
		}
	case "23514":
		if msg, ok := checkMessages[pgErr.ConstraintName]; ok {
			return domain.StoreRejected(pgErr.ColumnName, msg)
		}
		return domain.StoreRejected(pgErr.ColumnName, pgErr.Message)
	case "23502":
		return domain.StoreRejected(pgErr.ColumnName, fmt.Sprintf("Path `%s` is required.", pgErr.ColumnName))
	}
	return fmt.Errorf("postgres: %w", err)
}

var checkMessages = map[string]string{
	"athletes_username_check":  domain.MsgUsernameRequired,
	"exercises_duration_check": domain.MsgInvalidDuration,
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(aggregateID string, payload interface{}) string
}

var eventCatalog = map[string]EventMetadata{
	events.TypeAthleteRegistered: {
		Topic:         "athlete_events",
		SchemaSubject: "athlete_events-value",
		PartitionKeyFn: func(aggregateID string, _ interface{}) string {
			return aggregateID
		},
	},
	events.TypeExerciseLogged: {
		Topic:         "exercise_events",
		SchemaSubject: "exercise_events-value",
		PartitionKeyFn: func(aggregateID string, payload interface{}) string {
			if logged, ok := payload.(events.ExerciseLogged); ok {
				return logged.AthleteID
			}
			return aggregateID
		},
	},
}
