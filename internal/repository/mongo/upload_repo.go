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

const uploadCollectionName = "uploads"

// mongoUploadRepository implements repository.UploadRepository.
type mongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new upload metadata repository.
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	return &mongoUploadRepository{
		collection: db.Collection(uploadCollectionName),
	}
}

// Create inserts new upload metadata.
func (r *mongoUploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	upload.ID = primitive.NewObjectID()
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, upload); err != nil {
		return primitive.NilObjectID, err
	}
	return upload.ID, nil
}

// GetByURL finds the metadata of the object served at url.
func (r *mongoUploadRepository) GetByURL(ctx context.Context, url string) (*domain.Upload, error) {
	return findOne[domain.Upload](ctx, r.collection, bson.M{"url": url})
}

func (r *mongoUploadRepository) DeleteByURL(ctx context.Context, url string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"url": url})
	return err
}

// EnsureUploadIndexes creates necessary indexes for the uploads collection.
func EnsureUploadIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "purpose", Value: 1}}, Options: options.Index()},
	})
}
