package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/schedule"
)

// CreateContent stores a content item and its four review occurrences.
// The schedule is generated from the creation date in the service's
// location and never recomputed.
func (s *Service) CreateContent(ctx context.Context, title, labelID string) (*domain.Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	label, err := s.resolveLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	content := &domain.Content{
		Title:      title,
		LabelID:    label.ID,
		LabelName:  label.Name,
		LabelColor: label.Color,
		CreatedAt:  now.UTC(),
	}
	if err := s.contents.CreateContent(ctx, content, schedule.Generate(now)); err != nil {
		return nil, err
	}
	return content, nil
}

// ListContents returns all content items with label and reviews, newest
// first
func (s *Service) ListContents(ctx context.Context) ([]domain.Content, error) {
	return s.contents.ListContents(ctx)
}

// GetContent returns one content item with label and reviews
func (s *Service) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	return s.contents.GetContent(ctx, id)
}

// UpdateContent changes title and label; the review schedule is kept
func (s *Service) UpdateContent(ctx context.Context, id, title, labelID string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	if _, err := s.resolveLabel(ctx, labelID); err != nil {
		return err
	}
	return s.contents.UpdateContent(ctx, &domain.Content{ID: id, Title: title, LabelID: labelID})
}

// DeleteContent removes a content item and all of its reviews
func (s *Service) DeleteContent(ctx context.Context, id string) error {
	return s.contents.DeleteContent(ctx, id)
}

func (s *Service) resolveLabel(ctx context.Context, labelID string) (*domain.Label, error) {
	if strings.TrimSpace(labelID) == "" {
		return nil, fmt.Errorf("%w: label is required", domain.ErrInvalidLabel)
	}
	label, err := s.labels.GetLabel(ctx, labelID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("label %s: %w", labelID, domain.ErrInvalidLabel)
	}
	if err != nil {
		return nil, err
	}
	return label, nil
}
