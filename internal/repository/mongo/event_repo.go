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

const (
	eventCollectionName      = "events"
	attendanceCollectionName = "event_attendances"
)

// --- Events ---

type mongoEventRepository struct {
	collection *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) repository.EventRepository {
	return &mongoEventRepository{collection: db.Collection(eventCollectionName)}
}

func (r *mongoEventRepository) Create(ctx context.Context, event *domain.Event) (primitive.ObjectID, error) {
	event.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return primitive.NilObjectID, err
	}
	return event.ID, nil
}

func (r *mongoEventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	return findOne[domain.Event](ctx, r.collection, bson.M{"_id": id})
}

// ListByGym lists events of a gym. Upcoming events come soonest first,
// past events latest first.
func (r *mongoEventRepository) ListByGym(ctx context.Context, gymID primitive.ObjectID, filter repository.EventFilter) ([]domain.Event, error) {
	query := bson.M{"gymId": gymID}
	if len(filter.Audiences) > 0 {
		query["audience"] = bson.M{"$in": filter.Audiences}
	}
	sortDir := 1
	if filter.Upcoming != nil {
		if *filter.Upcoming {
			query["startDate"] = bson.M{"$gte": filter.Now}
		} else {
			query["startDate"] = bson.M{"$lt": filter.Now}
			sortDir = -1
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: sortDir}})
	return findAll[domain.Event](ctx, r.collection, query, opts)
}

func (r *mongoEventRepository) Update(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":       event.Title,
		"description": event.Description,
		"startDate":   event.StartDate,
		"endDate":     event.EndDate,
		"location":    event.Location,
		"audience":    event.Audience,
		"updatedAt":   event.UpdatedAt,
	}}
	return updateByID(ctx, r.collection, event.ID, update)
}

func (r *mongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureEventIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "startDate", Value: 1}}},
	})
}

// --- Attendance ---

type mongoAttendanceRepository struct {
	collection *mongo.Collection
}

func NewMongoAttendanceRepository(db *mongo.Database) repository.AttendanceRepository {
	return &mongoAttendanceRepository{collection: db.Collection(attendanceCollectionName)}
}

func (r *mongoAttendanceRepository) Get(ctx context.Context, eventID, userID primitive.ObjectID) (*domain.EventAttendance, error) {
	return findOne[domain.EventAttendance](ctx, r.collection, bson.M{"eventId": eventID, "userId": userID})
}

// Upsert relies on the unique (eventId, userId) index, so repeating a
// confirmation rewrites the comment instead of adding a row.
func (r *mongoAttendanceRepository) Upsert(ctx context.Context, eventID, userID primitive.ObjectID, comment string) (*domain.EventAttendance, error) {
	now := time.Now().UTC()
	filter := bson.M{"eventId": eventID, "userId": userID}
	update := bson.M{
		"$set":         bson.M{"comment": comment, "updatedAt": now},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var attendance domain.EventAttendance
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&attendance); err != nil {
		return nil, mapWriteError(err)
	}
	return &attendance, nil
}

func (r *mongoAttendanceRepository) Delete(ctx context.Context, eventID, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"eventId": eventID, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAttendanceRepository) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]domain.EventAttendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findAll[domain.EventAttendance](ctx, r.collection, bson.M{"eventId": eventID}, opts)
}

func (r *mongoAttendanceRepository) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"eventId": eventID})
	return err
}

func EnsureAttendanceIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
