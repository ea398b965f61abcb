package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListCourses returns every course ordered by name.
func (db *DB) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, created_at FROM courses ORDER BY lower(name)`,
	)
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

// FindCourseByName looks a course up by case-insensitive name.
func (db *DB) FindCourseByName(ctx context.Context, name string) (*Course, error) {
	c := &Course{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM courses WHERE lower(name) = lower($1)`,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("finding course by name: %w", pgErr(err))
	}
	return c, nil
}

// CreateCourse inserts a course. A name that already exists in any letter case
// yields ErrDuplicate.
func (db *DB) CreateCourse(ctx context.Context, name string) (*Course, error) {
	c := &Course{}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO courses (id, name) VALUES ($1, $2)
		 RETURNING id, name, created_at`,
		uuid.NewString(), name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating course: %w", pgErr(err))
	}
	return c, nil
}
