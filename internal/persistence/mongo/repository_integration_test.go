//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"example.com/exercisetracker/internal/domain"
)

func TestRepositoryAgainstMongo(t *testing.T) {
	ctx := context.Background()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	repo := NewRepository(client.Database("exercise-track-test"))
	require.NoError(t, repo.EnsureIndexes(ctx))

	athlete, err := repo.InsertAthlete(ctx, "alice")
	require.NoError(t, err)
	_, err = repo.InsertAthlete(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	missing, err := repo.FindAthleteByID(ctx, "not-hex")
	require.NoError(t, err)
	require.Nil(t, missing)

	for d := 1; d <= 5; d++ {
		_, err := repo.InsertExercise(ctx, domain.Exercise{
			UserID:      athlete.ID,
			Description: "swim",
			Duration:    25,
			Date:        time.Date(2020, time.January, d, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	entries, err := repo.QueryExercises(ctx, athlete.ID, domain.DateFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	from := time.Date(2020, time.January, 4, 0, 0, 0, 0, time.UTC)
	entries, err = repo.QueryExercises(ctx, athlete.ID, domain.DateFilter{From: &from}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Sun Jan 05 2020", domain.FormatDate(entries[1].Date))
}
