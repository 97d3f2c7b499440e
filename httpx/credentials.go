package httpx

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/survey-studio/database"
)

var ErrBadCredentials = errors.New("invalid email or password")

// VerifyCredentials checks a password against the stored hash and returns the
// id of the user.
func VerifyCredentials(ctx context.Context, db *sql.DB, email, password string) (int64, error) {
	user, err := database.FindUserByEmail(ctx, db, email)
	if errors.Is(err, database.ErrNotFound) {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, err
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, errors.Wrap(err, "compare password")
	}
	return user.ID, nil
}

// RegisterUser stores a new user with a hashed password.
func RegisterUser(ctx context.Context, db *sql.DB, name, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}
	return database.InsertUser(ctx, db, database.User{Name: name, Email: email, PasswordHash: hash})
}
