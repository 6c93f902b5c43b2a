package tracker

import (
	"context"

	"github.com/pbaille/studyrev/internal/domain"
)

// Statistics computes fresh counts over labels, contents and reviews
func (s *Service) Statistics(ctx context.Context) (*domain.Statistics, error) {
	contents, err := s.contents.CountContents(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.labels.CountLabels(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.ledger.ReviewCounts(ctx, s.Today())
	if err != nil {
		return nil, err
	}

	return &domain.Statistics{
		TotalContents:    contents,
		TotalLabels:      labels,
		PendingToday:     counts.PendingToday,
		CompletedReviews: counts.Completed,
		TotalReviews:     counts.Total,
		Overdue:          counts.Overdue,
	}, nil
}
