// Package mongo provides the MongoDB-backed store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/exercisetracker/internal/domain"
)

const (
	athletesCollection  = "athletes"
	exercisesCollection = "exercises"

	codeDocumentValidationFailure = 121
)

type athleteDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

type logDoc struct {
	Description string    `bson:"description"`
	Duration    float64   `bson:"duration"`
	Date        time.Time `bson:"date"`
}

// Connect opens a client for uri and verifies it with a ping. The caller owns
// the client and must Disconnect it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

// Repository stores athletes and exercises in two collections of one database.
type Repository struct {
	athletes  *mongo.Collection
	exercises *mongo.Collection
}

// NewRepository constructs a Repository over db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		athletes:  db.Collection(athletesCollection),
		exercises: db.Collection(exercisesCollection),
	}
}

// EnsureIndexes creates the unique username index and the log lookup index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.athletes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo: username index: %w", err)
	}
	if _, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongo: exercise index: %w", err)
	}
	return nil
}

// InsertAthlete implements domain.AthleteRepository.
func (r *Repository) InsertAthlete(ctx context.Context, username string) (*domain.Athlete, error) {
	res, err := r.athletes.InsertOne(ctx, athleteDoc{Username: username})
	if err != nil {
		return nil, translate(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("mongo: unexpected inserted id %T", res.InsertedID)
	}
	return &domain.Athlete{ID: oid.Hex(), Username: username}, nil
}

// FindAthleteByID implements domain.AthleteRepository. Ids that are not valid
// ObjectIDs cannot match and are reported as absent.
func (r *Repository) FindAthleteByID(ctx context.Context, id string) (*domain.Athlete, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findAthlete(ctx, bson.M{"_id": oid})
}

// FindAthleteByUsername implements domain.AthleteRepository.
func (r *Repository) FindAthleteByUsername(ctx context.Context, username string) (*domain.Athlete, error) {
	return r.findAthlete(ctx, bson.M{"username": username})
}

func (r *Repository) findAthlete(ctx context.Context, filter bson.M) (*domain.Athlete, error) {
	var doc athleteDoc
	if err := r.athletes.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo: find athlete: %w", err)
	}
	return &domain.Athlete{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// ListAthletes implements domain.AthleteRepository.
func (r *Repository) ListAthletes(ctx context.Context) ([]domain.Athlete, error) {
	cur, err := r.athletes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: list athletes: %w", err)
	}
	var docs []athleteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: list athletes: %w", err)
	}

	out := make([]domain.Athlete, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.Athlete{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return out, nil
}

// InsertExercise implements domain.ExerciseRepository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	res, err := r.exercises.InsertOne(ctx, exerciseDoc{
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	})
	if err != nil {
		return nil, translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		exercise.ID = oid.Hex()
	}
	return &exercise, nil
}

// QueryExercises implements domain.ExerciseRepository. The projection drops
// the entry id and owner id.
func (r *Repository) QueryExercises(ctx context.Context, userID string, filter domain.DateFilter, limit int) ([]domain.LogEntry, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0, "userId": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.exercises.Find(ctx, logFilter(userID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: query exercises: %w", err)
	}
	var docs []logDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: query exercises: %w", err)
	}

	out := make([]domain.LogEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.LogEntry{Description: doc.Description, Duration: doc.Duration, Date: doc.Date.UTC()})
	}
	return out, nil
}

// logFilter builds the filter document for a log query.
func logFilter(userID string, filter domain.DateFilter) bson.M {
	doc := bson.M{"userId": userID}
	date := bson.M{}
	if filter.From != nil {
		date["$gte"] = *filter.From
	}
	if filter.To != nil {
		date["$lt"] = *filter.To
	}
	if len(date) > 0 {
		doc["date"] = date
	}
	return doc
}

func translate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateUsername
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidationFailure {
				return domain.StoreRejected("", e.Message)
			}
		}
	}
	return fmt.Errorf("mongo: %w", err)
}
