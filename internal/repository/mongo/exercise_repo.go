package mongo

import (
	"context"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository.
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new exercise repository.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	stampExercise(exercise, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, err
	}
	return exercise.ID, nil
}

// CreateMany inserts exercises in one round trip and sets their IDs.
func (r *mongoExerciseRepository) CreateMany(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		stampExercise(&exercises[i], now)
		docs[i] = exercises[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func stampExercise(e *domain.Exercise, now time.Time) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = domain.ExerciseNotStarted
	}
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return findOne[domain.Exercise](ctx, r.collection, bson.M{"_id": id})
}

// ListByPlans returns the exercises of the given plans in display order.
func (r *mongoExerciseRepository) ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(planIDs) == 0 {
		return []domain.Exercise{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "planId", Value: 1}, {Key: "order", Value: 1}})
	return findAll[domain.Exercise](ctx, r.collection, bson.M{"planId": bson.M{"$in": planIDs}}, opts)
}

func (r *mongoExerciseRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Exercise, error) {
	return findAll[domain.Exercise](ctx, r.collection, bson.M{"studentId": studentID})
}

// Update writes the editable fields of an exercise.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	exercise.UpdatedAt = time.Now().UTC()
	return updateByID(ctx, r.collection, exercise.ID, bson.M{"$set": bson.M{
		"name":       exercise.Name,
		"sets":       exercise.Sets,
		"repsPerSet": exercise.RepsPerSet,
		"time":       exercise.WorkSeconds,
		"restTime":   exercise.RestSeconds,
		"order":      exercise.Order,
		"status":     exercise.Status,
		"mediaType":  exercise.MediaType,
		"mediaUrl":   exercise.MediaURL,
		"updatedAt":  exercise.UpdatedAt,
	}})
}

func (r *mongoExerciseRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
}

func (r *mongoExerciseRepository) SetMedia(ctx context.Context, id primitive.ObjectID, mediaType domain.MediaType, url string) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{
		"mediaType": mediaType,
		"mediaUrl":  url,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "planId", Value: 1}, {Key: "order", Value: 1}}},
		{Keys: bson.D{{Key: "studentId", Value: 1}}},
	})
}
