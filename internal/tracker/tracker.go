// Package tracker is the boundary that adapters (CLI, REST, reminders) call
// into. It validates input and references, generates review schedules and
// shapes results; persistence is delegated to the store capabilities below.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/pbaille/studyrev/internal/domain"
)

// LabelStore persists labels
type LabelStore interface {
	CreateLabel(ctx context.Context, label *domain.Label) error
	GetLabel(ctx context.Context, id string) (*domain.Label, error)
	ListLabels(ctx context.Context) ([]domain.Label, error)
	UpdateLabel(ctx context.Context, label *domain.Label) error
	DeleteLabel(ctx context.Context, id string) error
	CountLabels(ctx context.Context) (int, error)
}

// ContentStore persists content items together with their reviews
type ContentStore interface {
	CreateContent(ctx context.Context, content *domain.Content, reviews []domain.ReviewOccurrence) error
	GetContent(ctx context.Context, id string) (*domain.Content, error)
	ListContents(ctx context.Context) ([]domain.Content, error)
	UpdateContent(ctx context.Context, content *domain.Content) error
	DeleteContent(ctx context.Context, id string) error
	CountContents(ctx context.Context) (int, error)
}

// ReviewLedger owns completion state of review occurrences
type ReviewLedger interface {
	ReviewsByDate(ctx context.Context, date domain.Date) ([]domain.Review, error)
	ReviewsBetween(ctx context.Context, from, to domain.Date) ([]domain.Review, error)
	OverdueReviews(ctx context.Context, date domain.Date) ([]domain.Review, error)
	MarkCompleted(ctx context.Context, contentID string, reviewType domain.ReviewType, at time.Time) error
	UnmarkCompleted(ctx context.Context, contentID string, reviewType domain.ReviewType) error
	ReviewCounts(ctx context.Context, today domain.Date) (domain.ReviewCounts, error)
}

// Backend is the storage collaborator: every capability plus a readiness
// check
type Backend interface {
	LabelStore
	ContentStore
	ReviewLedger
	Ping(ctx context.Context) error
}

// Service is the query façade over a Backend
type Service struct {
	labels   LabelStore
	contents ContentStore
	ledger   ReviewLedger
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for creation and completion
// timestamps and for "today"
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone whose calendar defines "today" and the
// creation date of new content
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// New waits for the backend to answer a ping and returns a Service ready
// to accept calls
func New(ctx context.Context, backend Backend, opts ...Option) (*Service, error) {
	if err := backend.Ping(ctx); err != nil {
		return nil, fmt.Errorf("backend not ready: %w", err)
	}

	s := &Service{
		labels:   backend,
		contents: backend,
		ledger:   backend,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Now returns the current time in the service's location
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current calendar date in the service's location
func (s *Service) Today() domain.Date {
	return domain.DateOf(s.Now())
}
