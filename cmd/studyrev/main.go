package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/studyrev/internal/config"
	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/store"
	"github.com/pbaille/studyrev/internal/tracker"
	"github.com/pbaille/studyrev/internal/ui"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the persistent flags shared by every subcommand
type app struct {
	configPath string
	dbPath     string
	noColor    bool
	now        func() time.Time
}

func newRootCmd(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	rootCmd := &cobra.Command{
		Use:           "studyrev",
		Short:         "Track study content and its spaced review schedule",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(a.noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path or DSN (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(a.labelCmd())
	rootCmd.AddCommand(a.contentCmd())
	rootCmd.AddCommand(a.reviewCmd())
	rootCmd.AddCommand(a.statsCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.remindCmd())
	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.configCmd())

	return rootCmd
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, err
	}
	if a.dbPath != "" {
		cfg.Database.DSN = a.dbPath
	}
	return cfg, nil
}

// session is an open store with the tracker built on top of it
type session struct {
	cfg   config.Config
	store *store.Store
	svc   *tracker.Service
}

func (s *session) Close() error {
	return s.store.Close()
}

func (a *app) open(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == store.DriverSQLite {
		// Ensure directory exists
		dir := filepath.Dir(cfg.Database.DSN)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	st, err := store.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		st.Close()
		return nil, err
	}

	svc, err := tracker.New(ctx, st, tracker.WithLocation(loc), tracker.WithClock(a.now))
	if err != nil {
		st.Close()
		return nil, err
	}

	return &session{cfg: cfg, store: st, svc: svc}, nil
}

// findContent resolves a full id or a unique id prefix
func findContent(ctx context.Context, svc *tracker.Service, ref string) (*domain.Content, error) {
	contents, err := svc.ListContents(ctx)
	if err != nil {
		return nil, err
	}

	var found []domain.Content
	for _, c := range contents {
		if c.ID == ref {
			return &c, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			found = append(found, c)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("content %s: %w", ref, domain.ErrNotFound)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("content id prefix %q is ambiguous (%d matches)", ref, len(found))
	}
}

// findLabel resolves a label by id, exact name, case-insensitive name or
// id prefix. Names differing only in case are both valid labels, so a
// case-insensitive match must be unique.
func findLabel(ctx context.Context, svc *tracker.Service, ref string) (*domain.Label, error) {
	labels, err := svc.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	for _, l := range labels {
		if l.ID == ref || l.Name == ref {
			return &l, nil
		}
	}

	var folded []domain.Label
	for _, l := range labels {
		if strings.EqualFold(l.Name, ref) {
			folded = append(folded, l)
		}
	}
	if len(folded) == 1 {
		return &folded[0], nil
	}
	if len(folded) > 1 {
		return nil, fmt.Errorf("%w: label name %q matches %d labels in different case", domain.ErrValidation, ref, len(folded))
	}

	var found []domain.Label
	for _, l := range labels {
		if strings.HasPrefix(l.ID, ref) {
			found = append(found, l)
		}
	}
	if len(found) == 1 {
		return &found[0], nil
	}
	if len(found) > 1 {
		return nil, fmt.Errorf("label id prefix %q is ambiguous (%d matches)", ref, len(found))
	}
	return nil, fmt.Errorf("label %s: %w", ref, domain.ErrInvalidLabel)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to max runes, ending with "..." when cut
func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func printReviews(w io.Writer, reviews []domain.Review, withDate bool) {
	if len(reviews) == 0 {
		fmt.Fprintln(w, ui.Dim("No reviews."))
		return
	}

	for _, r := range reviews {
		label := ui.Pad(ui.Label(r.LabelName, r.LabelColor), 14)
		if withDate {
			fmt.Fprintf(w, "%s %s  %s  %-12s %s %s\n", ui.Check(r.Completed), r.ScheduledDate, shortID(r.ContentID), r.Type, label, truncate(r.Title, 50))
		} else {
			fmt.Fprintf(w, "%s %s  %-12s %s %s\n", ui.Check(r.Completed), shortID(r.ContentID), r.Type, label, truncate(r.Title, 50))
		}
	}
}
