package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addLabel(t *testing.T, s *Store, name string) *domain.Label {
	t.Helper()
	label := &domain.Label{Name: name, Color: "#3366FF", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateLabel(context.Background(), label))
	return label
}

func addContent(t *testing.T, s *Store, title, labelID string, createdAt time.Time) *domain.Content {
	t.Helper()
	content := &domain.Content{Title: title, LabelID: labelID, CreatedAt: createdAt}
	require.NoError(t, s.CreateContent(context.Background(), content, schedule.Generate(createdAt)))
	return content
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("mysql", "whatever")
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(DriverSQLite, path)
	require.NoError(t, err)
	label := addLabel(t, s, "Go")
	require.NoError(t, s.Close())

	s, err = New(DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetLabel(context.Background(), label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)
}

func TestLabelCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	label := addLabel(t, s, "Math")
	assert.NotEmpty(t, label.ID)

	label.Name = "Mathematics"
	label.Color = "#00AA00"
	require.NoError(t, s.UpdateLabel(ctx, label))

	got, err := s.GetLabel(ctx, label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", got.Name)
	assert.Equal(t, "#00AA00", got.Color)
	assert.WithinDuration(t, label.CreatedAt, got.CreatedAt, time.Microsecond)

	addLabel(t, s, "Biology")
	labels, err := s.ListLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "Biology", labels[0].Name)

	n, err := s.CountLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteLabel(ctx, label.ID))
	_, err = s.GetLabel(ctx, label.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLabel(ctx, label.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateLabel(ctx, label), domain.ErrNotFound)
}

func TestLabelNameIsUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	addLabel(t, s, "History")

	err := s.CreateLabel(ctx, &domain.Label{Name: "History", Color: "#000000", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrValidation)

	other := addLabel(t, s, "Art")
	other.Name = "History"
	assert.ErrorIs(t, s.UpdateLabel(ctx, other), domain.ErrValidation)
}

func TestDeleteLabelInUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	addContent(t, s, "Channels", label.ID, time.Now().UTC())

	assert.ErrorIs(t, s.DeleteLabel(ctx, label.ID), domain.ErrInUse)

	_, err := s.GetLabel(ctx, label.ID)
	assert.NoError(t, err)
}

func TestCreateContentWritesReviews(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	createdAt := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	content := addContent(t, s, "Generics", label.ID, createdAt)
	require.Len(t, content.Reviews, 4)

	got, err := s.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Generics", got.Title)
	assert.Equal(t, "Go", got.LabelName)
	assert.Equal(t, "#3366FF", got.LabelColor)
	assert.True(t, createdAt.Equal(got.CreatedAt))
	require.Len(t, got.Reviews, 4)
	for i, r := range got.Reviews {
		assert.Equal(t, domain.ReviewTypes[i], r.Type)
		assert.Equal(t, content.ID, r.ContentID)
		assert.False(t, r.Completed)
		assert.Nil(t, r.CompletedAt)
	}
	assert.Equal(t, "2024-02-29", got.Reviews[2].ScheduledDate.String())
}

func TestCreateContentUnknownLabelIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := &domain.Content{Title: "Orphan", LabelID: "missing", CreatedAt: time.Now().UTC()}
	err := s.CreateContent(ctx, content, schedule.Generate(content.CreatedAt))
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	n, err := s.CountContents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	counts, err := s.ReviewCounts(ctx, domain.DateOf(time.Now()))
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
}

func TestCreateContentRollsBackOnReviewFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")

	createdAt := time.Now().UTC()
	reviews := schedule.Generate(createdAt)
	reviews[3].Type = reviews[0].Type // duplicate natural key

	err := s.CreateContent(ctx, &domain.Content{Title: "Broken", LabelID: label.ID, CreatedAt: createdAt}, reviews)
	require.Error(t, err)

	n, err := s.CountContents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	counts, err := s.ReviewCounts(ctx, domain.DateOf(createdAt))
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
}

func TestListContentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	addContent(t, s, "Older", label.ID, base)
	addContent(t, s, "Newer", label.ID, base.Add(time.Hour))

	contents, err := s.ListContents(ctx)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "Newer", contents[0].Title)
	assert.Equal(t, "Older", contents[1].Title)
	for _, c := range contents {
		assert.Len(t, c.Reviews, 4)
		assert.Equal(t, "Go", c.LabelName)
	}
}

func TestUpdateContentKeepsSchedule(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	go1 := addLabel(t, s, "Go")
	rust := addLabel(t, s, "Rust")
	content := addContent(t, s, "Ownership", go1.ID, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, s.UpdateContent(ctx, &domain.Content{ID: content.ID, Title: "Borrowing", LabelID: rust.ID}))

	got, err := s.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Borrowing", got.Title)
	assert.Equal(t, "Rust", got.LabelName)
	assert.Equal(t, content.Reviews, got.Reviews)

	err = s.UpdateContent(ctx, &domain.Content{ID: content.ID, Title: "x", LabelID: "missing"})
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)
	err = s.UpdateContent(ctx, &domain.Content{ID: "missing", Title: "x", LabelID: rust.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteContentCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	createdAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	content := addContent(t, s, "Interfaces", label.ID, createdAt)
	keep := addContent(t, s, "Maps", label.ID, createdAt)

	require.NoError(t, s.DeleteContent(ctx, content.ID))

	_, err := s.GetContent(ctx, content.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, r := range content.Reviews {
		reviews, err := s.ReviewsByDate(ctx, r.ScheduledDate)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, keep.ID, reviews[0].ContentID)
	}
	assert.ErrorIs(t, s.DeleteContent(ctx, content.ID), domain.ErrNotFound)

	require.NoError(t, s.DeleteContent(ctx, keep.ID))
	require.NoError(t, s.DeleteLabel(ctx, label.ID))
}

func TestReviewsByDateOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	zeta := addLabel(t, s, "Zeta")
	alpha := addLabel(t, s, "Alpha")
	createdAt := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	addContent(t, s, "B title", zeta.ID, createdAt)
	addContent(t, s, "A title", zeta.ID, createdAt)
	addContent(t, s, "C title", alpha.ID, createdAt)
	addContent(t, s, "Other day", alpha.ID, createdAt.AddDate(0, 0, 1))

	reviews, err := s.ReviewsByDate(ctx, domain.MustParseDate("2024-07-02"))
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	var got []string
	for _, r := range reviews {
		got = append(got, r.LabelName+"/"+r.Title)
		assert.Equal(t, domain.NextDay, r.Type)
	}
	assert.Equal(t, []string{"Alpha/C title", "Zeta/A title", "Zeta/B title"}, got)

	reviews, err = s.ReviewsByDate(ctx, domain.MustParseDate("2024-07-03"))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestOrderingIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	biology := addLabel(t, s, "Biology")
	art := addLabel(t, s, "art")
	createdAt := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	addContent(t, s, "Cells", biology.ID, createdAt)
	addContent(t, s, "banana still life", art.ID, createdAt)
	addContent(t, s, "Abstract", art.ID, createdAt)

	labels, err := s.ListLabels(ctx)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "art", labels[0].Name)
	assert.Equal(t, "Biology", labels[1].Name)

	reviews, err := s.ReviewsByDate(ctx, domain.MustParseDate("2024-07-02"))
	require.NoError(t, err)
	var got []string
	for _, r := range reviews {
		got = append(got, r.LabelName+"/"+r.Title)
	}
	assert.Equal(t, []string{"art/Abstract", "art/banana still life", "Biology/Cells"}, got)

	reviews, err = s.ReviewsBetween(ctx, domain.MustParseDate("2024-07-02"), domain.MustParseDate("2024-07-08"))
	require.NoError(t, err)
	require.Len(t, reviews, 6)
	assert.Equal(t, "Abstract", reviews[0].Title)
	assert.Equal(t, "Cells", reviews[5].Title)
}

func TestReviewsBetweenAndOverdue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	content := addContent(t, s, "Slices", label.ID, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	reviews, err := s.ReviewsBetween(ctx, domain.MustParseDate("2024-01-01"), domain.MustParseDate("2024-02-01"))
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, domain.NextDay, reviews[0].Type)
	assert.Equal(t, domain.OneMonth, reviews[2].Type)

	require.NoError(t, s.MarkCompleted(ctx, content.ID, domain.NextDay, time.Now().UTC()))
	overdue, err := s.OverdueReviews(ctx, domain.MustParseDate("2024-02-01"))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, domain.OneWeek, overdue[0].Type)
}

func TestMarkAndUnmark(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	content := addContent(t, s, "Goroutines", label.ID, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	first := time.Date(2024, 2, 8, 18, 30, 0, 0, time.UTC)

	require.NoError(t, s.MarkCompleted(ctx, content.ID, domain.OneWeek, first))
	err := s.MarkCompleted(ctx, content.ID, domain.OneWeek, first.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	reviews, err := s.ReviewsByDate(ctx, domain.MustParseDate("2024-02-08"))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.True(t, reviews[0].Completed)
	require.NotNil(t, reviews[0].CompletedAt)
	assert.True(t, first.Equal(*reviews[0].CompletedAt))

	require.NoError(t, s.UnmarkCompleted(ctx, content.ID, domain.OneWeek))
	assert.ErrorIs(t, s.UnmarkCompleted(ctx, content.ID, domain.OneWeek), domain.ErrNotCompleted)

	reviews, err = s.ReviewsByDate(ctx, domain.MustParseDate("2024-02-08"))
	require.NoError(t, err)
	assert.False(t, reviews[0].Completed)
	assert.Nil(t, reviews[0].CompletedAt)

	assert.ErrorIs(t, s.MarkCompleted(ctx, "missing", domain.OneWeek, first), domain.ErrNotFound)
	assert.ErrorIs(t, s.MarkCompleted(ctx, content.ID, "two_weeks", first), domain.ErrNotFound)
	assert.ErrorIs(t, s.UnmarkCompleted(ctx, "missing", domain.OneWeek), domain.ErrNotFound)
}

func TestReviewCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	label := addLabel(t, s, "Go")
	a := addContent(t, s, "A", label.ID, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	addContent(t, s, "B", label.ID, time.Date(2024, 4, 7, 9, 0, 0, 0, time.UTC))

	require.NoError(t, s.MarkCompleted(ctx, a.ID, domain.NextDay, time.Now().UTC()))

	// 2024-04-08 is A's one_week and B's next_day
	counts, err := s.ReviewCounts(ctx, domain.MustParseDate("2024-04-08"))
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewCounts{Total: 8, Completed: 1, PendingToday: 2, Overdue: 0}, counts)

	counts, err = s.ReviewCounts(ctx, domain.MustParseDate("2024-04-20"))
	require.NoError(t, err)
	assert.Equal(t, 0, counts.PendingToday)
	assert.Equal(t, 3, counts.Overdue)
}
