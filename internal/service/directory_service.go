package service

import (
	"context"
	"strings"

	"gymconnect/backend/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GymCard struct {
	Gym  domain.GymProfile
	User domain.User
}

type TrainerCard struct {
	Trainer domain.TrainerProfile
	User    domain.User
}

type StudentCard struct {
	Student domain.StudentProfile
	User    domain.User
}

// DirectoryService lists profiles and manages roster edges.
type DirectoryService interface {
	ListGyms(ctx context.Context) ([]GymCard, error)
	ListTrainers(ctx context.Context, gymID *primitive.ObjectID) ([]TrainerCard, error)
	// ListStudents returns the roster of a gym or a trainer.
	ListStudents(ctx context.Context, p domain.Principal) ([]StudentCard, error)
	FindStudentByEmail(ctx context.Context, p domain.Principal, email string) (*StudentCard, error)
	UsersForTasks(ctx context.Context, p domain.Principal) ([]domain.User, error)

	AssociateStudentWithGym(ctx context.Context, p domain.Principal, studentID, gymID primitive.ObjectID) (*StudentCard, error)
	AddStudent(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (*StudentCard, error)
	ResponsibleTrainer(ctx context.Context, p domain.Principal) (*TrainerDetails, error)
}

type directoryService struct {
	*Core
}

func NewDirectoryService(core *Core) DirectoryService {
	return &directoryService{Core: core}
}

// usersByID loads the users with the given ids, keyed by id.
func (s *Core) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	users, err := s.Store.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *directoryService) ListGyms(ctx context.Context) ([]GymCard, error) {
	gyms, err := s.Store.Gyms.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(gyms))
	for i, g := range gyms {
		ids[i] = g.UserID
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]GymCard, 0, len(gyms))
	for _, g := range gyms {
		cards = append(cards, GymCard{Gym: g, User: users[g.UserID]})
	}
	return cards, nil
}

func (s *directoryService) ListTrainers(ctx context.Context, gymID *primitive.ObjectID) ([]TrainerCard, error) {
	trainers, err := s.Store.Trainers.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	return s.trainerCards(ctx, trainers)
}

func (s *Core) trainerCards(ctx context.Context, trainers []domain.TrainerProfile) ([]TrainerCard, error) {
	ids := make([]primitive.ObjectID, len(trainers))
	for i, t := range trainers {
		ids[i] = t.UserID
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]TrainerCard, 0, len(trainers))
	for _, t := range trainers {
		cards = append(cards, TrainerCard{Trainer: t, User: users[t.UserID]})
	}
	return cards, nil
}

func (s *Core) studentCards(ctx context.Context, students []domain.StudentProfile) ([]StudentCard, error) {
	ids := make([]primitive.ObjectID, len(students))
	for i, st := range students {
		ids[i] = st.UserID
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]StudentCard, 0, len(students))
	for _, st := range students {
		cards = append(cards, StudentCard{Student: st, User: users[st.UserID]})
	}
	return cards, nil
}

func (s *directoryService) ListStudents(ctx context.Context, p domain.Principal) ([]StudentCard, error) {
	switch p.(type) {
	case *domain.GymPrincipal, *domain.TrainerPrincipal:
	default:
		return nil, ErrWrongRole
	}
	students, err := s.Graph.StudentsOf(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.studentCards(ctx, students)
}

// FindStudentByEmail looks up a student that the caller could add to its roster.
func (s *directoryService) FindStudentByEmail(ctx context.Context, p domain.Principal, email string) (*StudentCard, error) {
	switch p.(type) {
	case *domain.GymPrincipal, *domain.TrainerPrincipal:
	default:
		return nil, ErrWrongRole
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalidInput("email is required")
	}

	user, err := s.Store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, ErrStudentNotFound)
	}
	if !user.IsStudent() {
		return nil, ErrStudentNotFound
	}
	student, err := s.Store.Students.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrStudentNotFound)
	}

	if _, ok := p.(*domain.GymPrincipal); ok && student.GymID != nil {
		return nil, ErrAlreadyAffiliated
	}
	if _, ok := p.(*domain.TrainerPrincipal); ok && student.TrainerID != nil {
		return nil, ErrAlreadyLinked
	}
	user.PasswordHash = ""
	return &StudentCard{Student: *student, User: *user}, nil
}

// UsersForTasks lists who the caller can assign tasks to: a gym's students
// and trainers, a trainer's students, nobody for other roles.
func (s *directoryService) UsersForTasks(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	students, err := s.Graph.StudentsOf(ctx, p)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.UserID)
	}
	if gp, ok := p.(*domain.GymPrincipal); ok {
		trainers, err := s.Store.Trainers.List(ctx, domain.IDRef(gp.Gym.ID))
		if err != nil {
			return nil, err
		}
		for _, t := range trainers {
			ids = append(ids, t.UserID)
		}
	}
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	users, err := s.Store.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// AssociateStudentWithGym affiliates a student with the caller's own gym.
func (s *directoryService) AssociateStudentWithGym(ctx context.Context, p domain.Principal, studentID, gymID primitive.ObjectID) (*StudentCard, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	if gp.Gym.ID != gymID {
		return nil, ErrOutsideGym
	}

	student, err := s.Enforce.AssociateStudentWithGym(ctx, studentID, gymID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"student_id": studentID.Hex(), "gym_id": gymID.Hex()}).Info("student associated with gym")
	return s.studentCard(ctx, student)
}

// AddStudent links a student to the calling trainer. This is the only way a
// trainer gains access to a student's plans and reports.
func (s *directoryService) AddStudent(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (*StudentCard, error) {
	tp, err := RequireTrainer(p)
	if err != nil {
		return nil, err
	}
	student, err := s.Enforce.BindStudentToTrainer(ctx, studentID, tp.Trainer.ID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"student_id": studentID.Hex(), "trainer_id": tp.Trainer.ID.Hex()}).Info("student linked to trainer")
	return s.studentCard(ctx, student)
}

func (s *directoryService) studentCard(ctx context.Context, student *domain.StudentProfile) (*StudentCard, error) {
	user, err := s.Store.Users.GetByID(ctx, student.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrStudentNotFound)
	}
	user.PasswordHash = ""
	return &StudentCard{Student: *student, User: *user}, nil
}

func (s *directoryService) ResponsibleTrainer(ctx context.Context, p domain.Principal) (*TrainerDetails, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	if sp.Student.TrainerID == nil {
		return nil, ErrNoTrainer
	}
	trainer, err := s.Store.Trainers.GetByID(ctx, *sp.Student.TrainerID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoTrainer)
	}
	user, err := s.Store.Users.GetByID(ctx, trainer.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoTrainer)
	}
	user.PasswordHash = ""
	return &TrainerDetails{Trainer: trainer, User: user}, nil
}
