package mongo

import (
	"context"

	"gymconnect/backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewStore wires every MongoDB repository against db. The transactor uses
// client sessions, so db must come from client.
func NewStore(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:       NewMongoUserRepository(db),
		Gyms:        NewMongoGymRepository(db),
		Trainers:    NewMongoTrainerRepository(db),
		Students:    NewMongoStudentRepository(db),
		Plans:       NewMongoTrainingPlanRepository(db),
		Exercises:   NewMongoExerciseRepository(db),
		Reports:     NewMongoReportRepository(db),
		Payments:    NewMongoPaymentRepository(db),
		Events:      NewMongoEventRepository(db),
		Attendances: NewMongoAttendanceRepository(db),
		Tasks:       NewMongoTaskRepository(db),
		Uploads:     NewMongoUploadRepository(db),
		Tx:          NewTransactor(client),
	}
}

// EnsureIndexes creates the indexes of every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureGymIndexes(ctx, db.Collection(gymCollectionName))
	EnsureTrainerIndexes(ctx, db.Collection(trainerCollectionName))
	EnsureStudentIndexes(ctx, db.Collection(studentCollectionName))
	EnsureTrainingPlanIndexes(ctx, db.Collection(trainingPlanCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsureReportIndexes(ctx, db.Collection(reportCollectionName))
	EnsurePaymentIndexes(ctx, db.Collection(paymentCollectionName))
	EnsureEventIndexes(ctx, db.Collection(eventCollectionName))
	EnsureAttendanceIndexes(ctx, db.Collection(attendanceCollectionName))
	EnsureTaskIndexes(ctx, db.Collection(taskCollectionName))
	EnsureUploadIndexes(ctx, db.Collection(uploadCollectionName))
	log.Println("index creation process completed")
}
