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

const labelColumns = "id, name, color, created_at"

// CreateLabel inserts a label, assigning its ID
func (s *Store) CreateLabel(ctx context.Context, label *domain.Label) error {
	if label.ID == "" {
		label.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO labels (id, name, color, created_at) VALUES (?, ?, ?, ?)"),
		label.ID, label.Name, label.Color, label.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: label %q already exists", domain.ErrValidation, label.Name)
	}
	if err != nil {
		return fmt.Errorf("insert label: %w", err)
	}
	return nil
}

// GetLabel retrieves a label by ID
func (s *Store) GetLabel(ctx context.Context, id string) (*domain.Label, error) {
	var label domain.Label
	err := s.db.GetContext(ctx, &label, s.db.Rebind(
		"SELECT "+labelColumns+" FROM labels WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("label %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get label: %w", err)
	}
	return &label, nil
}

// ListLabels returns all labels ordered by name, ignoring case
func (s *Store) ListLabels(ctx context.Context) ([]domain.Label, error) {
	labels := []domain.Label{}
	err := s.db.SelectContext(ctx, &labels,
		"SELECT "+labelColumns+" FROM labels ORDER BY LOWER(name), id")
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// UpdateLabel changes a label's name and color
func (s *Store) UpdateLabel(ctx context.Context, label *domain.Label) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		"UPDATE labels SET name = ?, color = ? WHERE id = ?"),
		label.Name, label.Color, label.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: label %q already exists", domain.ErrValidation, label.Name)
	}
	if err != nil {
		return fmt.Errorf("update label: %w", err)
	}
	return expectRow(result, "label", label.ID)
}

// DeleteLabel removes a label that no content references
func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var inUse int
		if err := tx.GetContext(ctx, &inUse, tx.Rebind(
			"SELECT COUNT(*) FROM contents WHERE label_id = ?"), id); err != nil {
			return fmt.Errorf("count label contents: %w", err)
		}
		if inUse > 0 {
			return fmt.Errorf("label %s is used by %d content(s): %w", id, inUse, domain.ErrInUse)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM labels WHERE id = ?"), id)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("label %s: %w", id, domain.ErrInUse)
		}
		if err != nil {
			return fmt.Errorf("delete label: %w", err)
		}
		return expectRow(result, "label", id)
	})
}

// CountLabels returns the number of labels
func (s *Store) CountLabels(ctx context.Context) (int, error) {
	n, err := s.count(ctx, "SELECT COUNT(*) FROM labels")
	if err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return n, nil
}

func expectRow(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
