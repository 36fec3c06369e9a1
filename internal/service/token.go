package service

import (
	"fmt"
	"time"

	"gymconnect/backend/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const tokenIssuer = "gymconnect"

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	// Verify returns the user id embedded in a valid token. Any failure is ErrInvalidToken.
	Verify(token string) (primitive.ObjectID, error)
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type jwtIssuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTIssuer creates an HS256 TokenIssuer.
func NewJWTIssuer(secret string, expiration time.Duration) TokenIssuer {
	if secret == "" {
		panic("JWT secret cannot be empty")
	}
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &jwtIssuer{secret: []byte(secret), expiration: expiration, now: time.Now}
}

func (j *jwtIssuer) Issue(user *domain.User) (string, error) {
	now := j.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *jwtIssuer) Verify(tokenString string) (primitive.ObjectID, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return userID, nil
}
