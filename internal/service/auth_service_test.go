package service_test

import (
	"strings"
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository/memory"
	"gymconnect/backend/internal/service"

	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	cred := f.credentials()
	cred.Email = strings.ToUpper(cred.Email)

	res, err := f.auth.RegisterStudent(f.ctx, service.RegisterStudentInput{Credentials: cred})
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(cred.Email), res.User.Email)
	assert.Equal(t, domain.RoleStudent, res.User.Role)
	assert.Empty(t, res.User.PasswordHash)

	uid, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)

	login, err := f.auth.Login(f.ctx, " "+cred.Email+" ", cred.Password)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.auth.Login(f.ctx, cred.Email, cred.Password+"x")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)
	_, err = f.auth.Login(f.ctx, "nobody@example.com", cred.Password)
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterRegistrations.WithLabelValues(string(domain.RoleStudent))))
}

func TestRegister_WithoutMetrics(t *testing.T) {
	f := newFixture(t)
	auth := service.NewAuthService(service.NewCore(memory.NewStore(), nil), f.tokens)

	res, err := auth.RegisterGym(f.ctx, service.RegisterGymInput{
		Credentials: f.credentials(),
		TaxID:       "12.345.678/0001-90",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGym, res.User.Role)
	assert.NotEmpty(t, res.Token)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()

	cred := f.credentials()
	_, err := f.auth.RegisterStudent(f.ctx, service.RegisterStudentInput{Credentials: cred})
	require.NoError(t, err)

	_, err = f.auth.RegisterTrainer(f.ctx, service.RegisterTrainerInput{Credentials: cred, LicenseID: "123456-G/SP"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	assert.ErrorIs(t, err, service.ErrConflict)

	short := f.credentials()
	short.Password = "12345"
	_, err = f.auth.RegisterStudent(f.ctx, service.RegisterStudentInput{Credentials: short})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	unknown := primitive.NewObjectID()
	orphan := f.credentials()
	_, err = f.auth.RegisterStudent(f.ctx, service.RegisterStudentInput{Credentials: orphan, GymID: &unknown})
	assert.ErrorIs(t, err, service.ErrUnknownGym)
	// The user row is rolled back with the profile.
	_, err = f.store.Users.GetByEmail(f.ctx, strings.ToLower(orphan.Email))
	assert.Error(t, err)

	_, err = f.auth.RegisterGym(f.ctx, service.RegisterGymInput{Credentials: f.credentials(), TaxID: gym.Gym.TaxID})
	assert.ErrorIs(t, err, service.ErrTaxIDTaken)

	trainer := f.trainer(nil)
	_, err = f.auth.RegisterTrainer(f.ctx, service.RegisterTrainerInput{Credentials: f.credentials(), LicenseID: trainer.Trainer.LicenseID})
	assert.ErrorIs(t, err, service.ErrLicenseTaken)
}

func TestJWTIssuer(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleGym}

	issuer := service.NewJWTIssuer("secret-a", time.Hour)
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	_, err = service.NewJWTIssuer("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": user.ID.Hex(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret-a"))
	require.NoError(t, err)
	_, err = issuer.Verify(expired)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": user.ID.Hex()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	assert.Panics(t, func() { service.NewJWTIssuer("", time.Hour) })
}
