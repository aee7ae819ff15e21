package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"example.com/exercisetracker/internal/domain"
)

func TestLogFilter(t *testing.T) {
	require.Equal(t, bson.M{"userId": "u1"}, logFilter("u1", domain.DateFilter{}))

	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, bson.M{
		"userId": "u1",
		"date":   bson.M{"$gte": from, "$lt": to},
	}, logFilter("u1", domain.DateFilter{From: &from, To: &to}))

	require.Equal(t, bson.M{
		"userId": "u1",
		"date":   bson.M{"$lt": to},
	}, logFilter("u1", domain.DateFilter{To: &to}))
}

func TestTranslateWriteErrors(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, translate(dup), domain.ErrDuplicateUsername)

	invalidDoc := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}}}
	verr, ok := domain.IsValidation(translate(invalidDoc))
	require.True(t, ok)
	require.Equal(t, "Document failed validation", verr.Message)
	require.True(t, verr.FromStore)

	boom := errors.New("socket closed")
	require.ErrorIs(t, translate(boom), boom)
}
