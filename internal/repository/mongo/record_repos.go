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
	reportCollectionName  = "reports"
	paymentCollectionName = "payments"
)

// --- Reports ---

type mongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{collection: db.Collection(reportCollectionName)}
}

func (r *mongoReportRepository) Create(ctx context.Context, report *domain.Report) (primitive.ObjectID, error) {
	report.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return primitive.NilObjectID, err
	}
	return report.ID, nil
}

func (r *mongoReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Report, error) {
	return findOne[domain.Report](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoReportRepository) Update(ctx context.Context, report *domain.Report) error {
	report.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"type":      report.Type,
		"value":     report.Value,
		"date":      report.Date,
		"note":      report.Note,
		"updatedAt": report.UpdatedAt,
	}
	if report.TrainerID != nil {
		set["trainerId"] = *report.TrainerID
	}
	return updateByID(ctx, r.collection, report.ID, bson.M{"$set": set})
}

func (r *mongoReportRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	return findAll[domain.Report](ctx, r.collection, bson.M{"studentId": studentID}, opts)
}

// GetByStudentTypeAndDate matches any sample taken during the UTC calendar day of day.
func (r *mongoReportRepository) GetByStudentTypeAndDate(ctx context.Context, studentID primitive.ObjectID, reportType domain.ReportType, day time.Time) (*domain.Report, error) {
	y, m, d := day.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	filter := bson.M{
		"studentId": studentID,
		"type":      reportType,
		"date":      bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)},
	}
	return findOne[domain.Report](ctx, r.collection, filter)
}

func EnsureReportIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "type", Value: 1}, {Key: "date", Value: -1}}},
	})
}

// --- Payments ---

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{collection: db.Collection(paymentCollectionName)}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	payment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		return primitive.NilObjectID, err
	}
	return payment.ID, nil
}

func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	return findOne[domain.Payment](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoPaymentRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: -1}})
	return findAll[domain.Payment](ctx, r.collection, bson.M{"studentId": studentID}, opts)
}

func (r *mongoPaymentRepository) ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: -1}})
	return findAll[domain.Payment](ctx, r.collection, bson.M{"gymId": gymID}, opts)
}

func (r *mongoPaymentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus, paidAt *time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	if paidAt != nil {
		update["$set"].(bson.M)["paidAt"] = *paidAt
	} else {
		update["$unset"] = bson.M{"paidAt": ""}
	}
	return updateByID(ctx, r.collection, id, update)
}

func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) {
	ensureIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "dueDate", Value: -1}}},
		{Keys: bson.D{{Key: "gymId", Value: 1}, {Key: "dueDate", Value: -1}}},
	})
}
