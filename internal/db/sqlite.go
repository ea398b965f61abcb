package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is the embedded backend. Dates are stored as YYYY-MM-DD text.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database file at path. ":memory:" gives a
// private in-memory database.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded SQLite migrations that have not run yet.
func (s *SQLite) Migrate(ctx context.Context) ([]string, error) {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	const dir = "migrations/sqlite"
	files, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, file).Scan(&count); err != nil {
			return applied, fmt.Errorf("checking migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationFS.ReadFile(path.Join(dir, file))
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", file, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("beginning transaction for %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("executing migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, file); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("recording migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("committing migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}
	return applied, nil
}

func sqliteErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrDuplicate, err.Error())
	}
	return err
}

// Users

func (s *SQLite) CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error) {
	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", sqliteErr(err))
	}
	return u, nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, `email = ?`, email)
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *SQLite) getUser(ctx context.Context, where string, arg string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", sqliteErr(err))
	}
	return u, nil
}

// Courses

func (s *SQLite) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM courses ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()
	courses := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *SQLite) FindCourseByName(ctx context.Context, name string) (*Course, error) {
	c := &Course{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM courses WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("finding course by name: %w", sqliteErr(err))
	}
	return c, nil
}

func (s *SQLite) CreateCourse(ctx context.Context, name string) (*Course, error) {
	c := &Course{ID: uuid.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating course: %w", sqliteErr(err))
	}
	return c, nil
}

// Matches

const sqliteMatchSelect = `SELECT m.id, m.user_id, m.course_id, m.played_on, m.format, m.opponent,
	m.result, m.score, m.created_at, COALESCE(c.name, '')
	FROM matches m LEFT JOIN courses c ON c.id = m.course_id`

func (s *SQLite) ListMatches(ctx context.Context, userID string, order Order) ([]Match, error) {
	dir := orderClause(order)
	rows, err := s.db.QueryContext(ctx,
		sqliteMatchSelect+` WHERE m.user_id = ? ORDER BY m.played_on `+dir+`, m.created_at `+dir,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()
	matches := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.UserID, &m.CourseID, &m.Date, &m.Format,
			&m.Opponent, &m.Result, &m.Score, &m.CreatedAt, &m.CourseName); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLite) GetMatch(ctx context.Context, userID, id string) (*Match, error) {
	m := &Match{}
	err := s.db.QueryRowContext(ctx,
		sqliteMatchSelect+` WHERE m.id = ? AND m.user_id = ?`, id, userID,
	).Scan(&m.ID, &m.UserID, &m.CourseID, &m.Date, &m.Format,
		&m.Opponent, &m.Result, &m.Score, &m.CreatedAt, &m.CourseName)
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", sqliteErr(err))
	}
	return m, nil
}

func (s *SQLite) CreateMatch(ctx context.Context, m *Match) error {
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("creating match: invalid date %q", m.Date)
	}
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (id, user_id, course_id, played_on, format, opponent, result, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.CourseID, m.Date, m.Format, m.Opponent, m.Result, m.Score, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating match: %w", sqliteErr(err))
	}
	return nil
}

func (s *SQLite) DeleteMatch(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting match: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) CountMatches(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return n, nil
}
