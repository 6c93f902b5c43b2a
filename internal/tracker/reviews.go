package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/pbaille/studyrev/internal/domain"
)

// ReviewsToday returns the occurrences scheduled for today
func (s *Service) ReviewsToday(ctx context.Context) ([]domain.Review, error) {
	return s.ledger.ReviewsByDate(ctx, s.Today())
}

// ReviewsByDate returns the occurrences scheduled on a YYYY-MM-DD date,
// completed or not, ordered by label name then title
func (s *Service) ReviewsByDate(ctx context.Context, date string) ([]domain.Review, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.ledger.ReviewsByDate(ctx, d)
}

// ReviewsBetween returns the occurrences scheduled in the inclusive range
func (s *Service) ReviewsBetween(ctx context.Context, from, to string) ([]domain.Review, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", domain.ErrValidation, end, start)
	}
	return s.ledger.ReviewsBetween(ctx, start, end)
}

// OverdueReviews returns incomplete occurrences scheduled before today
func (s *Service) OverdueReviews(ctx context.Context) ([]domain.Review, error) {
	return s.ledger.OverdueReviews(ctx, s.Today())
}

// MarkReviewCompleted completes an occurrence and returns the completion
// time. Completing twice fails with ErrAlreadyCompleted and keeps the first
// timestamp.
func (s *Service) MarkReviewCompleted(ctx context.Context, contentID, reviewType string) (time.Time, error) {
	rt, err := domain.ParseReviewType(reviewType)
	if err != nil {
		return time.Time{}, err
	}

	at := s.now().UTC()
	if err := s.ledger.MarkCompleted(ctx, contentID, rt, at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// UnmarkReviewCompleted reverts a completion. Fails with ErrNotCompleted if
// the occurrence is not completed.
func (s *Service) UnmarkReviewCompleted(ctx context.Context, contentID, reviewType string) error {
	rt, err := domain.ParseReviewType(reviewType)
	if err != nil {
		return err
	}
	return s.ledger.UnmarkCompleted(ctx, contentID, rt)
}
