package service

import (
	"context"
	"errors"
	"strings"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type Credentials struct {
	Name     string
	Email    string
	Password string
}

type RegisterStudentInput struct {
	Credentials
	GymID *primitive.ObjectID
}

type RegisterTrainerInput struct {
	Credentials
	LicenseID string
	GymID     *primitive.ObjectID
}

type RegisterGymInput struct {
	Credentials
	TaxID string
}

// AuthResult is returned by every successful login or registration.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	RegisterStudent(ctx context.Context, in RegisterStudentInput) (*AuthResult, error)
	RegisterTrainer(ctx context.Context, in RegisterTrainerInput) (*AuthResult, error)
	RegisterGym(ctx context.Context, in RegisterGymInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// authService implements the AuthService interface.
type authService struct {
	*Core
	tokens TokenIssuer
}

func NewAuthService(core *Core, tokens TokenIssuer) AuthService {
	return &authService{Core: core, tokens: tokens}
}

func (s *authService) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*AuthResult, error) {
	return s.register(ctx, in.Credentials, domain.RoleStudent, func(ctx context.Context, userID primitive.ObjectID) error {
		if in.GymID != nil {
			if _, err := s.Enforce.CheckGym(ctx, *in.GymID); err != nil {
				return err
			}
		}
		_, err := s.Store.Students.Create(ctx, &domain.StudentProfile{UserID: userID, GymID: in.GymID})
		return err
	})
}

func (s *authService) RegisterTrainer(ctx context.Context, in RegisterTrainerInput) (*AuthResult, error) {
	in.LicenseID = strings.TrimSpace(in.LicenseID)
	if in.LicenseID == "" {
		return nil, invalidInput("cref is required")
	}
	return s.register(ctx, in.Credentials, domain.RoleTrainer, func(ctx context.Context, userID primitive.ObjectID) error {
		if in.GymID != nil {
			if _, err := s.Enforce.CheckGym(ctx, *in.GymID); err != nil {
				return err
			}
		}
		_, err := s.Store.Trainers.Create(ctx, &domain.TrainerProfile{UserID: userID, LicenseID: in.LicenseID, GymID: in.GymID})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrLicenseTaken
		}
		return err
	})
}

func (s *authService) RegisterGym(ctx context.Context, in RegisterGymInput) (*AuthResult, error) {
	in.TaxID = strings.TrimSpace(in.TaxID)
	if in.TaxID == "" {
		return nil, invalidInput("cnpj is required")
	}
	return s.register(ctx, in.Credentials, domain.RoleGym, func(ctx context.Context, userID primitive.ObjectID) error {
		_, err := s.Store.Gyms.Create(ctx, &domain.GymProfile{UserID: userID, Name: in.Name, TaxID: in.TaxID})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrTaxIDTaken
		}
		return err
	})
}

// register creates the user and its role profile as one unit, then signs a token.
func (s *authService) register(ctx context.Context, cred Credentials, role domain.Role, createProfile func(ctx context.Context, userID primitive.ObjectID) error) (*AuthResult, error) {
	// 1. Basic input validation
	cred.Name = strings.TrimSpace(cred.Name)
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if cred.Name == "" || cred.Email == "" || cred.Password == "" {
		return nil, invalidInput("name, email and password are required")
	}
	if len(cred.Password) < minPasswordLength {
		return nil, invalidInput("password must have at least %d characters", minPasswordLength)
	}

	// 2. Hash the password
	hashed, err := bcrypt.GenerateFromPassword([]byte(cred.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 3. Save the user and its profile
	user := &domain.User{
		Name:         cred.Name,
		Email:        cred.Email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Store.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		return createProfile(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.CounterRegistrations.WithLabelValues(string(role)).Inc()
	}
	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "role": role}).Info("user registered")

	// 4. Sign the token
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &AuthResult{Token: token, User: user}, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalidInput("email and password are required")
	}

	user, err := s.Store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, ErrAuthenticationFailed)
	}
	// Password mismatch maps to the same failure as an unknown email.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &AuthResult{Token: token, User: user}, nil
}
