package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matchbook/matchbook/internal/db"
)

// Repository is the slice of the store the write path needs.
type Repository interface {
	FindCourseByName(ctx context.Context, name string) (*db.Course, error)
	CreateCourse(ctx context.Context, name string) (*db.Course, error)
	CreateMatch(ctx context.Context, m *db.Match) error
}

// Service logs matches.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service. now may be nil to use the wall clock.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Logged is the outcome of LogMatch.
type Logged struct {
	Match         *db.Match `json:"match"`
	CourseCreated bool      `json:"course_created"`
}

// LogMatch validates form, reuses the course with the same name (any case) or
// creates it, then inserts the match.
func (s *Service) LogMatch(ctx context.Context, userID string, form Form) (*Logged, error) {
	form.Normalize(s.now())
	if err := form.Validate(); err != nil {
		return nil, err
	}

	course, created, err := s.resolveCourse(ctx, form.CourseName)
	if err != nil {
		return nil, err
	}

	m := &db.Match{
		UserID:     userID,
		CourseID:   course.ID,
		Date:       form.Date,
		Format:     form.Format,
		Opponent:   form.Opponent,
		Result:     form.Result,
		Score:      form.Score,
		CourseName: course.Name,
	}
	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("saving match: %w", err)
	}
	return &Logged{Match: m, CourseCreated: created}, nil
}

func (s *Service) resolveCourse(ctx context.Context, name string) (*db.Course, bool, error) {
	course, err := s.repo.FindCourseByName(ctx, name)
	if err == nil {
		return course, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up course: %w", err)
	}

	course, err = s.repo.CreateCourse(ctx, name)
	if err == nil {
		return course, true, nil
	}
	if !errors.Is(err, db.ErrDuplicate) {
		return nil, false, fmt.Errorf("creating course: %w", err)
	}
	// Another writer created it between the lookup and the insert.
	course, err = s.repo.FindCourseByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("looking up course: %w", err)
	}
	return course, false, nil
}
