// Package reminder sends a daily digest of the reviews due today.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"

	"github.com/pbaille/studyrev/internal/domain"
)

// Source provides the reviews a digest is built from
type Source interface {
	Today() domain.Date
	ReviewsToday(ctx context.Context) ([]domain.Review, error)
	OverdueReviews(ctx context.Context) ([]domain.Review, error)
}

// Notifier delivers a digest somewhere
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// Digest summarizes what is left to review on a date
type Digest struct {
	Date    domain.Date
	Due     []domain.Review
	Overdue []domain.Review
}

// Pending returns the due reviews that are not completed yet
func (d Digest) Pending() []domain.Review {
	var out []domain.Review
	for _, r := range d.Due {
		if !r.Completed {
			out = append(out, r)
		}
	}
	return out
}

// Empty reports whether there is nothing to remind about
func (d Digest) Empty() bool {
	return len(d.Pending()) == 0 && len(d.Overdue) == 0
}

// Reminder runs the digest once a day at a fixed time
type Reminder struct {
	scheduler *gocron.Scheduler
	source    Source
	notifiers []Notifier
	at        string
}

// New creates a reminder firing every day at "HH:MM" in loc
func New(source Source, at string, loc *time.Location, notifiers ...Notifier) *Reminder {
	return &Reminder{
		scheduler: gocron.NewScheduler(loc),
		source:    source,
		notifiers: notifiers,
		at:        at,
	}
}

// Start schedules the daily job without blocking
func (r *Reminder) Start(ctx context.Context) error {
	_, err := r.scheduler.Every(1).Day().At(r.at).Do(func() {
		if err := r.RunOnce(ctx); err != nil {
			log.Error("sending review reminder", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	r.scheduler.StartAsync()
	log.Info("review reminder scheduled", "at", r.at)
	return nil
}

// Stop terminates the scheduled job
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

// Build collects today's digest from the source
func Build(ctx context.Context, source Source) (Digest, error) {
	due, err := source.ReviewsToday(ctx)
	if err != nil {
		return Digest{}, err
	}
	overdue, err := source.OverdueReviews(ctx)
	if err != nil {
		return Digest{}, err
	}
	return Digest{Date: source.Today(), Due: due, Overdue: overdue}, nil
}

// RunOnce builds the digest and hands it to every notifier. Nothing is
// sent when no review is pending.
func (r *Reminder) RunOnce(ctx context.Context) error {
	digest, err := Build(ctx, r.source)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if digest.Empty() {
		log.Info("no reviews pending, skipping reminder", "date", digest.Date)
		return nil
	}

	var errs []error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, digest); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Format renders a digest as plain text
func Format(d Digest) string {
	var sb strings.Builder

	pending := d.Pending()
	fmt.Fprintf(&sb, "Reviews for %s: %d pending", d.Date, len(pending))
	if done := len(d.Due) - len(pending); done > 0 {
		fmt.Fprintf(&sb, ", %d done", done)
	}
	sb.WriteString("\n")

	for _, r := range pending {
		fmt.Fprintf(&sb, "- [%s] %s (%s)\n", r.LabelName, r.Title, humanType(r.Type))
	}

	if len(d.Overdue) > 0 {
		fmt.Fprintf(&sb, "Overdue: %d\n", len(d.Overdue))
		for _, r := range d.Overdue {
			fmt.Fprintf(&sb, "- [%s] %s (%s, since %s)\n", r.LabelName, r.Title, humanType(r.Type), r.ScheduledDate)
		}
	}

	return sb.String()
}

func humanType(rt domain.ReviewType) string {
	switch rt {
	case domain.NextDay:
		return "next day"
	case domain.OneWeek:
		return "1 week"
	case domain.OneMonth:
		return "1 month"
	case domain.ThreeMonths:
		return "3 months"
	default:
		return string(rt)
	}
}
