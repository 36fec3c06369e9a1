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

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository.
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new training plan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Upsert writes the plan of (StudentID, Weekday). The unique index on that
// pair keeps a second writer from inserting a duplicate.
func (r *mongoTrainingPlanRepository) Upsert(ctx context.Context, plan *domain.TrainingPlan) error {
	now := time.Now().UTC()
	plan.UpdatedAt = now

	filter := bson.M{"studentId": plan.StudentID, "weekday": plan.Weekday}
	set := bson.M{
		"name":        plan.Name,
		"description": plan.Description,
		"updatedAt":   now,
	}
	if plan.TrainerID != nil {
		set["trainerId"] = *plan.TrainerID
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.TrainingPlan
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return mapWriteError(err)
	}
	plan.ID = stored.ID
	plan.CreatedAt = stored.CreatedAt
	return nil
}

// GetByID retrieves a training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	return findOne[domain.TrainingPlan](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoTrainingPlanRepository) GetByStudentAndWeekday(ctx context.Context, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error) {
	return findOne[domain.TrainingPlan](ctx, r.collection, bson.M{"studentId": studentID, "weekday": weekday})
}

// ListByStudents returns the plans of every given student, by weekday.
func (r *mongoTrainingPlanRepository) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if len(studentIDs) == 0 {
		return []domain.TrainingPlan{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "studentId", Value: 1}, {Key: "weekday", Value: 1}})
	return findAll[domain.TrainingPlan](ctx, r.collection, bson.M{"studentId": bson.M{"$in": studentIDs}}, opts)
}

func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingPlanRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}})
}

func (r *mongoTrainingPlanRepository) CountByTrainerCreatedBetween(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"trainerId": trainerID,
		"createdAt": bson.M{"$gte": from, "$lte": to},
	})
}

// EnsureTrainingPlanIndexes creates the (studentId, weekday) uniqueness index.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "weekday", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
