package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const matchColumns = `m.id, m.user_id, m.course_id, to_char(m.played_on, 'YYYY-MM-DD'),
		m.format, m.opponent, m.result, m.score, m.created_at, COALESCE(c.name, '')`

// ListMatches returns a player's matches with their course names.
func (db *DB) ListMatches(ctx context.Context, userID string, order Order) ([]Match, error) {
	dir := orderClause(order)
	rows, err := db.Pool.Query(ctx,
		`SELECT `+matchColumns+`
		 FROM matches m LEFT JOIN courses c ON c.id = m.course_id
		 WHERE m.user_id = $1
		 ORDER BY m.played_on `+dir+`, m.created_at `+dir,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", pgErr(err))
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

// GetMatch retrieves one of a player's matches.
func (db *DB) GetMatch(ctx context.Context, userID, id string) (*Match, error) {
	m := &Match{}
	err := db.Pool.QueryRow(ctx,
		`SELECT `+matchColumns+`
		 FROM matches m LEFT JOIN courses c ON c.id = m.course_id
		 WHERE m.id = $1 AND m.user_id = $2`,
		id, userID,
	).Scan(&m.ID, &m.UserID, &m.CourseID, &m.Date, &m.Format,
		&m.Opponent, &m.Result, &m.Score, &m.CreatedAt, &m.CourseName)
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", pgErr(err))
	}
	return m, nil
}

// CreateMatch inserts m and fills in its ID and CreatedAt.
func (db *DB) CreateMatch(ctx context.Context, m *Match) error {
	played, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return fmt.Errorf("creating match: invalid date %q", m.Date)
	}
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO matches (id, user_id, course_id, played_on, format, opponent, result, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		uuid.NewString(), m.UserID, m.CourseID, played, m.Format, m.Opponent, m.Result, m.Score,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating match: %w", pgErr(err))
	}
	return nil
}

// DeleteMatch removes one of a player's matches.
func (db *DB) DeleteMatch(ctx context.Context, userID, id string) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM matches WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting match: %w", pgErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMatches returns how many matches a player has logged.
func (db *DB) CountMatches(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting matches: %w", pgErr(err))
	}
	return n, nil
}
