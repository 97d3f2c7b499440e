package database

import (
	"context"
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
}

func InsertUser(ctx context.Context, db *sql.DB, u User) (id int64, err error) {
	err = db.QueryRowContext(ctx, `
		INSERT INTO user (name, email, password_hash) VALUES (?, ?, ?)
		RETURNING id`,
		u.Name,
		u.Email,
		u.PasswordHash,
	).Scan(&id)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, errors.Wrap(err, "insert user")
	}
	return id, nil
}

func FindUserByEmail(ctx context.Context, db *sql.DB, email string) (u User, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash
		FROM user
		WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, errors.Wrap(err, "find user")
	}
	return u, nil
}
