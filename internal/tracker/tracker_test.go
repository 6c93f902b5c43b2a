package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, start time.Time) (*Service, *clock) {
	t.Helper()
	st, err := store.New(store.DriverSQLite, filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := &clock{t: start}
	svc, err := New(context.Background(), st, WithClock(c.now), WithLocation(time.UTC))
	require.NoError(t, err)
	return svc, c
}

type unreachable struct{ Backend }

func (unreachable) Ping(context.Context) error { return errors.New("connection refused") }

func TestNewWaitsForBackend(t *testing.T) {
	_, err := New(context.Background(), unreachable{})
	assert.ErrorContains(t, err, "backend not ready")
}

func TestCreateLabelValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	label, err := svc.CreateLabel(ctx, "  Physics ", "1e90ff")
	require.NoError(t, err)
	assert.Equal(t, "Physics", label.Name)
	assert.Equal(t, "#1E90FF", label.Color)

	for _, tt := range []struct{ name, color string }{
		{"", "#FFFFFF"},
		{"   ", "#FFFFFF"},
		{"Chem", "#FFF"},
		{"Chem", "red"},
		{"Chem", "#GGGGGG"},
		{"Physics", "#000000"},
	} {
		_, err := svc.CreateLabel(ctx, tt.name, tt.color)
		assert.ErrorIs(t, err, domain.ErrValidation, "CreateLabel(%q, %q)", tt.name, tt.color)
	}

	labels, err := svc.ListLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, labels, 1)
}

func TestUpdateAndDeleteLabel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Physics", "#1E90FF")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLabel(ctx, label.ID, "Quantum", "#abcdef"))
	assert.ErrorIs(t, svc.UpdateLabel(ctx, "missing", "X", "#abcdef"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateLabel(ctx, label.ID, "", "#abcdef"), domain.ErrValidation)

	content, err := svc.CreateContent(ctx, "Spin", label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quantum", content.LabelName)
	assert.Equal(t, "#ABCDEF", content.LabelColor)

	assert.ErrorIs(t, svc.DeleteLabel(ctx, label.ID), domain.ErrInUse)
	require.NoError(t, svc.DeleteContent(ctx, content.ID))
	require.NoError(t, svc.DeleteLabel(ctx, label.ID))
	assert.ErrorIs(t, svc.DeleteLabel(ctx, label.ID), domain.ErrNotFound)
}

func TestCreateContentSchedulesFourReviews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 1, 31, 16, 45, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)

	content, err := svc.CreateContent(ctx, "Context cancellation", label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", content.LabelName)
	require.Len(t, content.Reviews, 4)

	want := map[domain.ReviewType]string{
		domain.NextDay:     "2024-02-01",
		domain.OneWeek:     "2024-02-07",
		domain.OneMonth:    "2024-02-29",
		domain.ThreeMonths: "2024-04-30",
	}
	stored, err := svc.GetContent(ctx, content.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 4)
	for i, r := range stored.Reviews {
		assert.Equal(t, domain.ReviewTypes[i], r.Type)
		assert.Equal(t, want[r.Type], r.ScheduledDate.String())
		if i > 0 {
			assert.True(t, r.ScheduledDate.After(stored.Reviews[i-1].ScheduledDate))
		}
	}
}

func TestCreateContentUsesLocationCalendar(t *testing.T) {
	ctx := context.Background()
	st, err := store.New(store.DriverSQLite, filepath.Join(t.TempDir(), "tz.db"))
	require.NoError(t, err)
	defer st.Close()

	// 23:30 UTC on Jan 31 is already Feb 1 in Tokyo
	instant := time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)
	svc, err := New(ctx, st, WithClock(func() time.Time { return instant }), WithLocation(tokyo))
	require.NoError(t, err)

	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Timezones", label.ID)
	require.NoError(t, err)

	assert.Equal(t, "2024-02-02", content.Reviews[0].ScheduledDate.String())
	assert.Equal(t, "2024-03-01", content.Reviews[2].ScheduledDate.String())
	assert.Equal(t, "2024-02-01", svc.Today().String())
}

func TestCreateContentValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)

	_, err = svc.CreateContent(ctx, "", label.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateContent(ctx, "Title", "missing")
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)
	_, err = svc.CreateContent(ctx, "Title", "")
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalContents)
	assert.Zero(t, stats.TotalReviews)
}

func TestUpdateContent(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	goLabel, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	rust, err := svc.CreateLabel(ctx, "Rust", "#DEA584")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Lifetimes", goLabel.ID)
	require.NoError(t, err)

	c.advance(40 * 24 * time.Hour)
	require.NoError(t, svc.UpdateContent(ctx, content.ID, "Lifetimes in depth", rust.ID))

	got, err := svc.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lifetimes in depth", got.Title)
	assert.Equal(t, "Rust", got.LabelName)
	assert.Equal(t, "2024-03-16", got.Reviews[0].ScheduledDate.String())

	assert.ErrorIs(t, svc.UpdateContent(ctx, content.ID, "x", "missing"), domain.ErrInvalidLabel)
	assert.ErrorIs(t, svc.UpdateContent(ctx, content.ID, " ", rust.ID), domain.ErrValidation)
	assert.ErrorIs(t, svc.UpdateContent(ctx, "missing", "x", rust.ID), domain.ErrNotFound)

	_, err = svc.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkTwiceKeepsFirstTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Select", label.ID)
	require.NoError(t, err)

	c.advance(24 * time.Hour)
	first, err := svc.MarkReviewCompleted(ctx, content.ID, "next_day")
	require.NoError(t, err)
	assert.True(t, c.t.Equal(first))

	c.advance(time.Hour)
	_, err = svc.MarkReviewCompleted(ctx, content.ID, "next_day")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	reviews, err := svc.ReviewsToday(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].CompletedAt)
	assert.True(t, first.Equal(*reviews[0].CompletedAt))
}

func TestUnmarkRestoresPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Select", label.ID)
	require.NoError(t, err)

	_, err = svc.MarkReviewCompleted(ctx, content.ID, "one_month")
	require.NoError(t, err)
	require.NoError(t, svc.UnmarkReviewCompleted(ctx, content.ID, "one_month"))
	assert.ErrorIs(t, svc.UnmarkReviewCompleted(ctx, content.ID, "one_month"), domain.ErrNotCompleted)

	got, err := svc.GetContent(ctx, content.ID)
	require.NoError(t, err)
	for _, r := range got.Reviews {
		assert.False(t, r.Completed)
		assert.Nil(t, r.CompletedAt)
	}
}

func TestMarkUnknownOccurrence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Select", label.ID)
	require.NoError(t, err)

	_, err = svc.MarkReviewCompleted(ctx, content.ID, "two_weeks")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.MarkReviewCompleted(ctx, "missing", "one_week")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.UnmarkReviewCompleted(ctx, content.ID, "yearly"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.UnmarkReviewCompleted(ctx, "missing", "one_week"), domain.ErrNotFound)
}

func TestReviewsByDate(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	bio, err := svc.CreateLabel(ctx, "Biology", "#22AA22")
	require.NoError(t, err)
	art, err := svc.CreateLabel(ctx, "Art", "#AA2222")
	require.NoError(t, err)

	cells, err := svc.CreateContent(ctx, "Cells", bio.ID)
	require.NoError(t, err)
	_, err = svc.CreateContent(ctx, "Baroque", art.ID)
	require.NoError(t, err)
	_, err = svc.CreateContent(ctx, "Atoms", bio.ID)
	require.NoError(t, err)
	c.advance(24 * time.Hour)
	_, err = svc.CreateContent(ctx, "Tomorrow's item", art.ID)
	require.NoError(t, err)

	_, err = svc.MarkReviewCompleted(ctx, cells.ID, "next_day")
	require.NoError(t, err)

	reviews, err := svc.ReviewsByDate(ctx, "2024-09-03")
	require.NoError(t, err)
	var titles []string
	for _, r := range reviews {
		titles = append(titles, r.Title)
		assert.Equal(t, "2024-09-03", r.ScheduledDate.String())
	}
	assert.Equal(t, []string{"Baroque", "Atoms", "Cells"}, titles)
	assert.True(t, reviews[2].Completed)
	assert.Equal(t, "#22AA22", reviews[2].LabelColor)

	today, err := svc.ReviewsToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, reviews, today)

	_, err = svc.ReviewsByDate(ctx, "03/09/2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewsBetweenAndOverdue(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Errors", label.ID)
	require.NoError(t, err)

	month, err := svc.ReviewsBetween(ctx, "2024-09-01", "2024-09-30")
	require.NoError(t, err)
	require.Len(t, month, 2)
	assert.Equal(t, domain.NextDay, month[0].Type)
	assert.Equal(t, domain.OneWeek, month[1].Type)

	_, err = svc.ReviewsBetween(ctx, "2024-09-30", "2024-09-01")
	assert.ErrorIs(t, err, domain.ErrValidation)

	c.advance(10 * 24 * time.Hour)
	_, err = svc.MarkReviewCompleted(ctx, content.ID, "one_week")
	require.NoError(t, err)
	overdue, err := svc.OverdueReviews(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, domain.NextDay, overdue[0].Type)
}

func TestDeleteContentRemovesReviews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Errors", label.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContent(ctx, content.ID))
	assert.ErrorIs(t, svc.DeleteContent(ctx, content.ID), domain.ErrNotFound)

	for _, r := range content.Reviews {
		reviews, err := svc.ReviewsByDate(ctx, r.ScheduledDate.String())
		require.NoError(t, err)
		assert.Empty(t, reviews)
	}
	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReviews)
}

func TestStatisticsTrackCompletion(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	label, err := svc.CreateLabel(ctx, "Go", "#00ADD8")
	require.NoError(t, err)
	content, err := svc.CreateContent(ctx, "Maps", label.ID)
	require.NoError(t, err)
	c.advance(24 * time.Hour)
	_, err = svc.CreateContent(ctx, "Slices", label.ID)
	require.NoError(t, err)

	before, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{
		TotalContents: 2,
		TotalLabels:   1,
		PendingToday:  1,
		TotalReviews:  8,
	}, *before)

	// one_week is not due today: pending_today stays put
	_, err = svc.MarkReviewCompleted(ctx, content.ID, "one_week")
	require.NoError(t, err)
	after, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.CompletedReviews+1, after.CompletedReviews)
	assert.Equal(t, before.PendingToday, after.PendingToday)

	// next_day is due today
	_, err = svc.MarkReviewCompleted(ctx, content.ID, "next_day")
	require.NoError(t, err)
	after, err = svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.CompletedReviews+2, after.CompletedReviews)
	assert.Equal(t, before.PendingToday-1, after.PendingToday)

	require.NoError(t, svc.UnmarkReviewCompleted(ctx, content.ID, "next_day"))
	after, err = svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.PendingToday, after.PendingToday)

	c.advance(24 * time.Hour)
	after, err = svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Overdue)
	assert.Equal(t, 1, after.PendingToday)
}
