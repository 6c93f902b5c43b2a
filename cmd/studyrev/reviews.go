package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/studyrev/internal/ui"
)

func (a *app) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"reviews"},
		Short:   "Query and complete scheduled reviews",
	}

	cmd.AddCommand(a.reviewTodayCmd())
	cmd.AddCommand(a.reviewDateCmd())
	cmd.AddCommand(a.reviewRangeCmd())
	cmd.AddCommand(a.reviewOverdueCmd())
	cmd.AddCommand(a.reviewDoneCmd())
	cmd.AddCommand(a.reviewUndoCmd())
	return cmd
}

func (a *app) reviewTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Reviews scheduled for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			reviews, err := s.svc.ReviewsToday(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ui.Header(fmt.Sprintf("Reviews for %s:", s.svc.Today())))
			printReviews(cmd.OutOrStdout(), reviews, false)
			return nil
		},
	}
}

func (a *app) reviewDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date <YYYY-MM-DD>",
		Short: "Reviews scheduled on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			reviews, err := s.svc.ReviewsByDate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ui.Header(fmt.Sprintf("Reviews for %s:", args[0])))
			printReviews(cmd.OutOrStdout(), reviews, false)
			return nil
		},
	}
}

func (a *app) reviewRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range <from> <to>",
		Short: "Reviews scheduled between two dates, inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			reviews, err := s.svc.ReviewsBetween(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			printReviews(cmd.OutOrStdout(), reviews, true)
			return nil
		},
	}
}

func (a *app) reviewOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Uncompleted reviews scheduled before today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			reviews, err := s.svc.OverdueReviews(cmd.Context())
			if err != nil {
				return err
			}

			printReviews(cmd.OutOrStdout(), reviews, true)
			return nil
		},
	}
}

func (a *app) reviewDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <content> <type>",
		Short: "Mark a review completed (type: next_day, one_week, one_month, three_months)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := findContent(cmd.Context(), s.svc, args[0])
			if err != nil {
				return err
			}

			at, err := s.svc.MarkReviewCompleted(cmd.Context(), c.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Completed %s review of %s at %s\n",
				args[1], truncate(c.Title, 50), at.In(s.svc.Now().Location()).Format(time.DateTime))
			return nil
		},
	}
}

func (a *app) reviewUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <content> <type>",
		Short: "Revert a completed review to pending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := findContent(cmd.Context(), s.svc, args[0])
			if err != nil {
				return err
			}

			if err := s.svc.UnmarkReviewCompleted(cmd.Context(), c.ID, args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s review of %s\n", args[1], truncate(c.Title, 50))
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.svc.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Contents:          %d\n", st.TotalContents)
			fmt.Fprintf(out, "Labels:            %d\n", st.TotalLabels)
			fmt.Fprintf(out, "Pending today:     %d\n", st.PendingToday)
			overdue := fmt.Sprint(st.Overdue)
			if st.Overdue > 0 {
				overdue = ui.Yellow(overdue)
			}
			fmt.Fprintf(out, "Overdue:           %s\n", overdue)
			fmt.Fprintf(out, "Completed reviews: %d/%d\n", st.CompletedReviews, st.TotalReviews)
			return nil
		},
	}
}
