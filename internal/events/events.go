// Package events defines the payloads published for tracker changes.
package events

import "time"

// Event type names recorded in the outbox.
const (
	TypeAthleteRegistered = "athlete.registered"
	TypeExerciseLogged    = "exercise.logged"
)

// AthleteRegistered is emitted when a new athlete is created.
type AthleteRegistered struct {
	AthleteID    string    `json:"athlete_id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ExerciseLogged is emitted when an exercise entry is recorded.
type ExerciseLogged struct {
	ExerciseID  string    `json:"exercise_id"`
	AthleteID   string    `json:"athlete_id"`
	Description string    `json:"description"`
	DurationMin float64   `json:"duration_min"`
	Date        string    `json:"date"`
	LoggedAt    time.Time `json:"logged_at"`
}
