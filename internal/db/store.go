package db

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("already exists")
)

// Order selects the date ordering of ListMatches.
type Order int

const (
	// OldestFirst orders matches by date ascending (dashboard).
	OldestFirst Order = iota
	// NewestFirst orders matches by date descending (logbook).
	NewestFirst
)

// Store is the persistence surface shared by the Postgres and SQLite backends.
type Store interface {
	Migrate(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()

	CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	ListCourses(ctx context.Context) ([]Course, error)
	FindCourseByName(ctx context.Context, name string) (*Course, error)
	CreateCourse(ctx context.Context, name string) (*Course, error)

	ListMatches(ctx context.Context, userID string, order Order) ([]Match, error)
	GetMatch(ctx context.Context, userID, id string) (*Match, error)
	CreateMatch(ctx context.Context, m *Match) error
	DeleteMatch(ctx context.Context, userID, id string) error
	CountMatches(ctx context.Context, userID string) (int64, error)
}

// Open connects to the backend named by driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres", "pgx":
		pg, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		lite, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

func orderClause(o Order) string {
	if o == NewestFirst {
		return "DESC"
	}
	return "ASC"
}
