package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"socialnet/repositories"
	"socialnet/utils/errors"
)

type seedUser struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// SeedUsers registers the users listed in the JSON file at path, but only
// when the user collection is empty.
func SeedUsers(ctx context.Context, auth *AuthService, users repositories.UserRepository, path string) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logrus.WithField("users", count).Info("Users present, skipping seed")
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	var seeds []seedUser
	if err := json.NewDecoder(file).Decode(&seeds); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	logrus.Infof("Seeding %d users...", len(seeds))
	created := 0
	for _, su := range seeds {
		_, user, err := auth.Register(ctx, RegisterInput{
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Email:     su.Email,
			Password:  su.Password,
		})
		if stderrors.Is(err, errors.ErrConflict) {
			logrus.WithField("email", su.Email).Warn("Seed user already exists")
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", su.Email, err)
		}
		created++
		logrus.WithField("user_id", user.ID.Hex()).Debugf("Created user: %s %s", user.FirstName, user.LastName)
	}
	logrus.Infof("Seeded %d users", created)
	return nil
}
