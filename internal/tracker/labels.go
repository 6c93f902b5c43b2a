package tracker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pbaille/studyrev/internal/domain"
)

var colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// NormalizeColor validates a 6-hex-digit color and returns it as #RRGGBB
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return "", fmt.Errorf("%w: color %q must be 6 hex digits like #1E90FF", domain.ErrValidation, color)
	}
	return "#" + strings.ToUpper(strings.TrimPrefix(color, "#")), nil
}

func validateLabel(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: label name is required", domain.ErrValidation)
	}
	color, err := NormalizeColor(color)
	if err != nil {
		return "", "", err
	}
	return name, color, nil
}

// CreateLabel validates and stores a new label
func (s *Service) CreateLabel(ctx context.Context, name, color string) (*domain.Label, error) {
	name, color, err := validateLabel(name, color)
	if err != nil {
		return nil, err
	}

	label := &domain.Label{
		Name:      name,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}
	if err := s.labels.CreateLabel(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

// ListLabels returns all labels ordered by name
func (s *Service) ListLabels(ctx context.Context) ([]domain.Label, error) {
	return s.labels.ListLabels(ctx)
}

// UpdateLabel renames or recolors a label
func (s *Service) UpdateLabel(ctx context.Context, id, name, color string) error {
	name, color, err := validateLabel(name, color)
	if err != nil {
		return err
	}
	return s.labels.UpdateLabel(ctx, &domain.Label{ID: id, Name: name, Color: color})
}

// DeleteLabel removes a label. Labels still referenced by content are
// rejected with ErrInUse.
func (s *Service) DeleteLabel(ctx context.Context, id string) error {
	return s.labels.DeleteLabel(ctx, id)
}
