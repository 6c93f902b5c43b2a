package domain

import "time"

// Label is a named, colored category attached to content
type Label struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Content is a study item tracked for review. LabelName and LabelColor are
// joined from the referenced label on reads.
type Content struct {
	ID         string             `json:"id" db:"id"`
	Title      string             `json:"title" db:"title"`
	LabelID    string             `json:"label_id" db:"label_id"`
	LabelName  string             `json:"label_name,omitempty" db:"label_name"`
	LabelColor string             `json:"label_color,omitempty" db:"label_color"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
	Reviews    []ReviewOccurrence `json:"reviews,omitempty" db:"-"`
}

// ReviewOccurrence is one scheduled checkpoint for a content item.
// CompletedAt is set if and only if Completed is true.
type ReviewOccurrence struct {
	ContentID     string     `json:"content_id" db:"content_id"`
	Type          ReviewType `json:"review_type" db:"review_type"`
	ScheduledDate Date       `json:"scheduled_date" db:"scheduled_date"`
	Completed     bool       `json:"completed" db:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Review is a ReviewOccurrence joined with its content title and label
type Review struct {
	ReviewOccurrence
	Title      string `json:"title" db:"title"`
	LabelID    string `json:"label_id" db:"label_id"`
	LabelName  string `json:"label_name" db:"label_name"`
	LabelColor string `json:"label_color" db:"label_color"`
}

// ReviewCounts holds the ledger-side figures used for statistics
type ReviewCounts struct {
	Total        int `db:"total"`
	Completed    int `db:"completed"`
	PendingToday int `db:"pending_today"`
	Overdue      int `db:"overdue"`
}

// Statistics is a read-only snapshot computed at call time
type Statistics struct {
	TotalContents    int `json:"total_contents"`
	TotalLabels      int `json:"total_labels"`
	PendingToday     int `json:"pending_today"`
	CompletedReviews int `json:"completed_reviews"`
	TotalReviews     int `json:"total_reviews"`
	Overdue          int `json:"overdue"`
}
