package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialnet/models"
	"socialnet/monitoring"
	"socialnet/repositories"
	"socialnet/utils/errors"
)

type AuthService struct {
	users      repositories.UserRepository
	tokens     *TokenService
	bcryptCost int
}

func NewAuthService(users repositories.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register hashes the password, persists the user and returns a bearer token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	email := normalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return "", nil, errors.Conflict("User already exists")
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return "", nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return "", nil, errors.Internal(err, "Failed to hash password")
	}

	user := &models.User{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          email,
		PasswordHash:   string(passwordHash),
		ProfilePicture: GravatarURL(email, 200),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	monitoring.RegisterSuccess.WithLabelValues("local").Inc()
	logrus.WithField("user_id", user.ID.Hex()).Info("User registered")
	return token, user, nil
}

// Login authenticates a user by email and password and returns a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := errors.ErrInvalidCredential.WithMessage("Invalid credentials")

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if stderrors.Is(err, errors.ErrNotFound) {
		monitoring.LoginFailure.WithLabelValues("unknown_email").Inc()
		return "", invalid
	}
	if err != nil {
		return "", err
	}
	if user.PasswordHash == "" {
		monitoring.LoginFailure.WithLabelValues("no_password").Inc()
		return "", invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		monitoring.LoginFailure.WithLabelValues("wrong_password").Inc()
		return "", invalid
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}
	monitoring.LoginSuccess.Inc()
	return token, nil
}

// LoginWithIdentity signs in the owner of an external identity. An unknown
// identity is linked to the account with the same email, or gets a new
// account when there is none.
func (s *AuthService) LoginWithIdentity(ctx context.Context, identity *ExternalIdentity) (string, *models.User, error) {
	if identity.ID == "" {
		return "", nil, errors.ErrInvalidCredential.WithMessage("Identity provider returned no subject")
	}

	user, err := s.users.FindByGoogleID(ctx, identity.ID)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrNotFound):
		user, err = s.linkOrCreate(ctx, identity)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	monitoring.LoginSuccess.Inc()
	return token, user, nil
}

func (s *AuthService) linkOrCreate(ctx context.Context, identity *ExternalIdentity) (*models.User, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.InvalidInput("Identity provider returned no email")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if err := s.users.LinkGoogleID(ctx, existing.ID, identity.ID); err != nil {
			return nil, err
		}
		existing.GoogleID = identity.ID
		logrus.WithField("user_id", existing.ID.Hex()).Info("Linked Google account")
		return existing, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	firstName, lastName := identity.FirstName, identity.LastName
	if firstName == "" {
		firstName = strings.SplitN(email, "@", 2)[0]
	}
	picture := identity.Picture
	if picture == "" {
		picture = GravatarURL(email, 200)
	}
	user := &models.User{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		GoogleID:       identity.ID,
		ProfilePicture: picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	monitoring.RegisterSuccess.WithLabelValues("google").Inc()
	logrus.WithField("user_id", user.ID.Hex()).Info("User registered via Google")
	return user, nil
}

// GravatarURL returns the default avatar for email
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d", hex.EncodeToString(sum[:]), size)
}
