package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pbaille/studyrev/internal/domain"
)

const contentSelect = `
	SELECT c.id, c.title, c.label_id, l.name AS label_name, l.color AS label_color, c.created_at
	FROM contents c
	JOIN labels l ON l.id = c.label_id
`

const occurrenceColumns = "content_id, review_type, scheduled_date, completed, completed_at"

// CreateContent inserts a content item together with its review
// occurrences in one transaction
func (s *Store) CreateContent(ctx context.Context, content *domain.Content, reviews []domain.ReviewOccurrence) error {
	if content.ID == "" {
		content.ID = uuid.New().String()
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO contents (id, title, label_id, created_at) VALUES (?, ?, ?, ?)"),
			content.ID, content.Title, content.LabelID, content.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("label %s: %w", content.LabelID, domain.ErrInvalidLabel)
		}
		if err != nil {
			return fmt.Errorf("insert content: %w", err)
		}

		insert := tx.Rebind(
			"INSERT INTO reviews (content_id, review_type, scheduled_date, completed, completed_at) VALUES (?, ?, ?, ?, ?)")
		for i := range reviews {
			reviews[i].ContentID = content.ID
			r := reviews[i]
			if _, err := tx.ExecContext(ctx, insert,
				r.ContentID, r.Type, r.ScheduledDate, r.Completed, r.CompletedAt,
			); err != nil {
				return fmt.Errorf("insert review %s: %w", r.Type, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	content.Reviews = reviews
	return nil
}

// GetContent retrieves a content item with its label and reviews
func (s *Store) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	var content domain.Content
	err := s.db.GetContext(ctx, &content, s.db.Rebind(contentSelect+"WHERE c.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}

	reviews := []domain.ReviewOccurrence{}
	err = s.db.SelectContext(ctx, &reviews, s.db.Rebind(
		"SELECT "+occurrenceColumns+" FROM reviews WHERE content_id = ? ORDER BY scheduled_date"), id)
	if err != nil {
		return nil, fmt.Errorf("get content reviews: %w", err)
	}
	content.Reviews = reviews

	return &content, nil
}

// ListContents returns all content items, newest first, each with its
// label and reviews
func (s *Store) ListContents(ctx context.Context) ([]domain.Content, error) {
	contents := []domain.Content{}
	if err := s.db.SelectContext(ctx, &contents, contentSelect+"ORDER BY c.created_at DESC, c.id"); err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}

	var reviews []domain.ReviewOccurrence
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT "+occurrenceColumns+" FROM reviews ORDER BY content_id, scheduled_date")
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	byContent := make(map[string][]domain.ReviewOccurrence, len(contents))
	for _, r := range reviews {
		byContent[r.ContentID] = append(byContent[r.ContentID], r)
	}
	for i := range contents {
		contents[i].Reviews = byContent[contents[i].ID]
	}

	return contents, nil
}

// UpdateContent changes a content item's title and label. Review dates are
// left untouched.
func (s *Store) UpdateContent(ctx context.Context, content *domain.Content) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		"UPDATE contents SET title = ?, label_id = ? WHERE id = ?"),
		content.Title, content.LabelID, content.ID,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("label %s: %w", content.LabelID, domain.ErrInvalidLabel)
	}
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return expectRow(result, "content", content.ID)
}

// DeleteContent removes a content item and its reviews in one transaction
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM reviews WHERE content_id = ?"), id); err != nil {
			return fmt.Errorf("delete content reviews: %w", err)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM contents WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		return expectRow(result, "content", id)
	})
}

// CountContents returns the number of content items
func (s *Store) CountContents(ctx context.Context) (int, error) {
	n, err := s.count(ctx, "SELECT COUNT(*) FROM contents")
	if err != nil {
		return 0, fmt.Errorf("count contents: %w", err)
	}
	return n, nil
}
