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

const taskCollectionName = "tasks"

type mongoTaskRepository struct {
	collection *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &mongoTaskRepository{collection: db.Collection(taskCollectionName)}
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) (primitive.ObjectID, error) {
	task.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return primitive.NilObjectID, err
	}
	return task.ID, nil
}

func (r *mongoTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	return findOne[domain.Task](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoTaskRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"createdBy": userID},
		bson.M{"assignedTo": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	return findAll[domain.Task](ctx, r.collection, filter, opts)
}

func (r *mongoTaskRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.TaskStatus) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
}

// MarkOverdue only touches tasks still pending and past due, so a concurrent
// explicit update is never overwritten.
func (r *mongoTaskRepository) MarkOverdue(ctx context.Context, ids []primitive.ObjectID, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":     bson.M{"$in": ids},
		"status":  domain.TaskPending,
		"dueDate": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"status": domain.TaskOverdue, "updatedAt": now.UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureTaskIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "dueDate", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
}
