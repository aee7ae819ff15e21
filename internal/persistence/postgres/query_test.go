package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
)

func TestBuildLogQuery(t *testing.T) {
	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildLogQuery("u1", domain.DateFilter{From: &from, To: &to}, 2)
	require.Equal(t, `SELECT description, duration, date FROM exercises WHERE user_id=$1 AND date >= $2 AND date < $3 ORDER BY seq LIMIT $4`, query)
	require.Equal(t, []interface{}{"u1", from, to, 2}, args)

	query, args = buildLogQuery("u1", domain.DateFilter{To: &to}, 0)
	require.Equal(t, `SELECT description, duration, date FROM exercises WHERE user_id=$1 AND date < $2 ORDER BY seq`, query)
	require.Equal(t, []interface{}{"u1", to}, args)
}

func TestTranslateConstraintViolations(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23505", ConstraintName: "athletes_username_key"})
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	err = translate(&pgconn.PgError{Code: "23514", ConstraintName: "exercises_duration_check", ColumnName: "duration"})
	verr, ok := domain.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, domain.MsgInvalidDuration, verr.Message)
	require.True(t, verr.FromStore)

	err = translate(&pgconn.PgError{Code: "23502", ColumnName: "user_id"})
	verr, ok = domain.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Path `user_id` is required.", verr.Message)

	boom := errors.New("connection reset")
	require.ErrorIs(t, translate(boom), boom)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	all, err := migrationSource.FindMigrations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "0001_init.sql", all[0].Id)
	require.NotEmpty(t, all[0].Up)
	require.NotEmpty(t, all[0].Down)
}
