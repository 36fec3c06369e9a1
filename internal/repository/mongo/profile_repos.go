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
	gymCollectionName     = "gyms"
	trainerCollectionName = "trainers"
	studentCollectionName = "students"
)

// --- Gyms ---

type mongoGymRepository struct {
	collection *mongo.Collection
}

func NewMongoGymRepository(db *mongo.Database) repository.GymRepository {
	return &mongoGymRepository{collection: db.Collection(gymCollectionName)}
}

func (r *mongoGymRepository) Create(ctx context.Context, gym *domain.GymProfile) (primitive.ObjectID, error) {
	gym.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	gym.CreatedAt = now
	gym.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, gym); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return gym.ID, nil
}

func (r *mongoGymRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GymProfile, error) {
	return findOne[domain.GymProfile](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoGymRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.GymProfile, error) {
	return findOne[domain.GymProfile](ctx, r.collection, bson.M{"userId": userID})
}

func (r *mongoGymRepository) List(ctx context.Context) ([]domain.GymProfile, error) {
	return findAll[domain.GymProfile](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// Update replaces the stored profile. Owner and creation time are kept.
func (r *mongoGymRepository) Update(ctx context.Context, gym *domain.GymProfile) error {
	gym.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        gym.Name,
		"taxId":       gym.TaxID,
		"address":     gym.Address,
		"phone":       gym.Phone,
		"hours":       gym.Hours,
		"description": gym.Description,
		"amenities":   gym.Amenities,
		"plans":       gym.Plans,
		"website":     gym.Website,
		"instagram":   gym.Instagram,
		"facebook":    gym.Facebook,
		"updatedAt":   gym.UpdatedAt,
	}}
	return mapWriteError(updateByID(ctx, r.collection, gym.ID, update))
}

func EnsureGymIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "taxId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

// --- Trainers ---

type mongoTrainerRepository struct {
	collection *mongo.Collection
}

func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{collection: db.Collection(trainerCollectionName)}
}

func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.TrainerProfile) (primitive.ObjectID, error) {
	trainer.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, trainer); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return trainer.ID, nil
}

func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error) {
	return findOne[domain.TrainerProfile](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoTrainerRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	return findOne[domain.TrainerProfile](ctx, r.collection, bson.M{"userId": userID})
}

func (r *mongoTrainerRepository) List(ctx context.Context, gymID *primitive.ObjectID) ([]domain.TrainerProfile, error) {
	filter := bson.M{}
	if gymID != nil {
		filter["gymId"] = *gymID
	}
	return findAll[domain.TrainerProfile](ctx, r.collection, filter)
}

func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.TrainerProfile) error {
	trainer.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"licenseId":         trainer.LicenseID,
		"birthDate":         trainer.BirthDate,
		"gender":            trainer.Gender,
		"specializations":   trainer.Specializations,
		"yearsOfExperience": trainer.YearsOfExperience,
		"workSchedule":      trainer.WorkSchedule,
		"certifications":    trainer.Certifications,
		"biography":         trainer.Biography,
		"workLocation":      trainer.WorkLocation,
		"pricePerHour":      trainer.PricePerHour,
		"languages":         trainer.Languages,
		"instagram":         trainer.Instagram,
		"linkedin":          trainer.LinkedIn,
		"updatedAt":         trainer.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if trainer.GymID != nil {
		set["gymId"] = *trainer.GymID
	} else {
		update["$unset"] = bson.M{"gymId": ""}
	}
	return mapWriteError(updateByID(ctx, r.collection, trainer.ID, update))
}

func (r *mongoTrainerRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	return updateByID(ctx, r.collection, id, bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}})
}

func EnsureTrainerIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "licenseId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "gymId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
}

// --- Students ---

type mongoStudentRepository struct {
	collection *mongo.Collection
}

func NewMongoStudentRepository(db *mongo.Database) repository.StudentRepository {
	return &mongoStudentRepository{collection: db.Collection(studentCollectionName)}
}

func (r *mongoStudentRepository) Create(ctx context.Context, student *domain.StudentProfile) (primitive.ObjectID, error) {
	student.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, student); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return student.ID, nil
}

func (r *mongoStudentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	return findOne[domain.StudentProfile](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoStudentRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error) {
	return findOne[domain.StudentProfile](ctx, r.collection, bson.M{"userId": userID})
}

func (r *mongoStudentRepository) ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.StudentProfile, error) {
	return findAll[domain.StudentProfile](ctx, r.collection, bson.M{"gymId": gymID})
}

func (r *mongoStudentRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.StudentProfile, error) {
	return findAll[domain.StudentProfile](ctx, r.collection, bson.M{"trainerId": trainerID})
}

func (r *mongoStudentRepository) Update(ctx context.Context, student *domain.StudentProfile) error {
	student.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"birthDate":           student.BirthDate,
		"gender":              student.Gender,
		"goal":                student.Goal,
		"healthCondition":     student.HealthCondition,
		"experience":          student.Experience,
		"height":              student.Height,
		"weight":              student.Weight,
		"activityLevel":       student.ActivityLevel,
		"physicalLimitations": student.PhysicalLimitations,
		"updatedAt":           student.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if student.GymID != nil {
		set["gymId"] = *student.GymID
	} else {
		update["$unset"] = bson.M{"gymId": ""}
	}
	return updateByID(ctx, r.collection, student.ID, update)
}

// SetTrainerIf is a compare-and-swap on the trainer edge.
func (r *mongoStudentRepository) SetTrainerIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, trainerID primitive.ObjectID) error {
	return r.swapEdge(ctx, studentID, "trainerId", expected, trainerID)
}

// SetGymIf is a compare-and-swap on the gym edge.
func (r *mongoStudentRepository) SetGymIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, gymID primitive.ObjectID) error {
	return r.swapEdge(ctx, studentID, "gymId", expected, gymID)
}

func (r *mongoStudentRepository) swapEdge(ctx context.Context, studentID primitive.ObjectID, field string, expected *primitive.ObjectID, value primitive.ObjectID) error {
	filter := bson.M{"_id": studentID}
	if expected == nil {
		filter[field] = bson.M{"$exists": false}
	} else {
		filter[field] = *expected
	}
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Tell a missing student apart from a lost race.
		if _, err := r.GetByID(ctx, studentID); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoStudentRepository) CountByTrainerOutsideGym(ctx context.Context, trainerID primitive.ObjectID, gymID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"trainerId": trainerID}
	if gymID == nil {
		filter["gymId"] = bson.M{"$exists": true}
	} else {
		filter["gymId"] = bson.M{"$ne": *gymID}
	}
	return r.collection.CountDocuments(ctx, filter)
}

func EnsureStudentIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "gymId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "trainerId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
}

// updateByID applies update to the document with id and reports ErrNotFound when it is absent.
func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update interface{}) error {
	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
