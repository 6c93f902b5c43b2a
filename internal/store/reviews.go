package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pbaille/studyrev/internal/domain"
)

const reviewSelect = `
	SELECT r.content_id, r.review_type, r.scheduled_date, r.completed, r.completed_at,
	       c.title, c.label_id, l.name AS label_name, l.color AS label_color
	FROM reviews r
	JOIN contents c ON c.id = r.content_id
	JOIN labels l ON l.id = c.label_id
`

// reviewOrder sorts case-insensitively so sqlite and postgres agree
const reviewOrder = "LOWER(l.name), LOWER(c.title), c.id"

// ReviewsByDate returns every occurrence scheduled on date, completed or
// not, ordered by label name then content title
func (s *Store) ReviewsByDate(ctx context.Context, date domain.Date) ([]domain.Review, error) {
	return s.selectReviews(ctx,
		reviewSelect+"WHERE r.scheduled_date = ? ORDER BY "+reviewOrder,
		date)
}

// ReviewsBetween returns occurrences scheduled in [from, to], ordered by
// date then label name and title
func (s *Store) ReviewsBetween(ctx context.Context, from, to domain.Date) ([]domain.Review, error) {
	return s.selectReviews(ctx,
		reviewSelect+"WHERE r.scheduled_date >= ? AND r.scheduled_date <= ? ORDER BY r.scheduled_date, "+reviewOrder,
		from, to)
}

// OverdueReviews returns incomplete occurrences scheduled before date
func (s *Store) OverdueReviews(ctx context.Context, date domain.Date) ([]domain.Review, error) {
	return s.selectReviews(ctx,
		reviewSelect+"WHERE r.scheduled_date < ? AND r.completed = FALSE ORDER BY r.scheduled_date, "+reviewOrder,
		date)
}

func (s *Store) selectReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	reviews := []domain.Review{}
	if err := s.db.SelectContext(ctx, &reviews, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// MarkCompleted flags an occurrence as completed at the given time. The
// first completion wins: a second call reports ErrAlreadyCompleted.
func (s *Store) MarkCompleted(ctx context.Context, contentID string, reviewType domain.ReviewType, at time.Time) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE reviews SET completed = TRUE, completed_at = ?
		WHERE content_id = ? AND review_type = ? AND completed = FALSE`),
		at, contentID, reviewType,
	)
	if err != nil {
		return fmt.Errorf("mark review completed: %w", err)
	}
	return s.checkToggle(ctx, result, contentID, reviewType, domain.ErrAlreadyCompleted)
}

// UnmarkCompleted clears completion of an occurrence
func (s *Store) UnmarkCompleted(ctx context.Context, contentID string, reviewType domain.ReviewType) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE reviews SET completed = FALSE, completed_at = NULL
		WHERE content_id = ? AND review_type = ? AND completed = TRUE`),
		contentID, reviewType,
	)
	if err != nil {
		return fmt.Errorf("unmark review completed: %w", err)
	}
	return s.checkToggle(ctx, result, contentID, reviewType, domain.ErrNotCompleted)
}

// checkToggle tells a missing occurrence apart from one already in the
// requested state when a conditional update touched no row
func (s *Store) checkToggle(ctx context.Context, result sql.Result, contentID string, reviewType domain.ReviewType, unchanged error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var completed bool
	err = s.db.GetContext(ctx, &completed, s.db.Rebind(
		"SELECT completed FROM reviews WHERE content_id = ? AND review_type = ?"),
		contentID, reviewType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("review %s/%s: %w", contentID, reviewType, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}
	return fmt.Errorf("review %s/%s: %w", contentID, reviewType, unchanged)
}

// ReviewCounts aggregates the review table relative to today
func (s *Store) ReviewCounts(ctx context.Context, today domain.Date) (domain.ReviewCounts, error) {
	var counts domain.ReviewCounts
	err := s.db.GetContext(ctx, &counts, s.db.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN NOT completed AND scheduled_date = ? THEN 1 ELSE 0 END), 0) AS pending_today,
			COALESCE(SUM(CASE WHEN NOT completed AND scheduled_date < ? THEN 1 ELSE 0 END), 0) AS overdue
		FROM reviews`),
		today, today,
	)
	if err != nil {
		return domain.ReviewCounts{}, fmt.Errorf("count reviews: %w", err)
	}
	return counts, nil
}
