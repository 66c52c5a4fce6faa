package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"socialnet/utils/errors"
)

// TokenService issues and verifies the HS256 bearer tokens handed out by
// the auth endpoints.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) Issue(userID primitive.ObjectID) (string, error) {
	return s.issue(userID, s.ttl)
}

func (s *TokenService) issue(userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": userID.Hex(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Internal(err, "Failed to generate token")
	}
	return tokenString, nil
}

// Parse verifies tokenString and returns the user id it carries
func (s *TokenService) Parse(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.ErrInvalidCredential.WithMessage("Invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, errors.ErrInvalidCredential.WithMessage("Invalid token")
	}
	raw, ok := claims["userID"].(string)
	if !ok {
		return primitive.NilObjectID, errors.ErrInvalidCredential.WithMessage("Invalid token")
	}
	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errors.ErrInvalidCredential.WithMessage("Invalid token")
	}
	return userID, nil
}
