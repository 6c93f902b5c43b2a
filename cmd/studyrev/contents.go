package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/studyrev/internal/classifier"
	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/fetcher"
	"github.com/pbaille/studyrev/internal/schedule"
	"github.com/pbaille/studyrev/internal/ui"
)

func (a *app) contentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "content",
		Aliases: []string{"contents"},
		Short:   "Manage study content",
	}

	cmd.AddCommand(a.contentAddCmd())
	cmd.AddCommand(a.contentListCmd())
	cmd.AddCommand(a.contentShowCmd())
	cmd.AddCommand(a.contentUpdateCmd())
	cmd.AddCommand(a.contentDeleteCmd())
	return cmd
}

func (a *app) contentAddCmd() *cobra.Command {
	var labelRef, url string
	var suggest bool

	cmd := &cobra.Command{
		Use:   "add [title | url]",
		Short: "Add content and schedule its reviews",
		Long: `Add content and schedule its reviews.

A single URL argument is treated like --url: the title is taken from the page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			title := strings.Join(args, " ")
			pageURL := url
			if pageURL == "" && len(args) == 1 && fetcher.IsURL(args[0]) {
				pageURL, title = args[0], ""
			}

			if pageURL != "" && title == "" {
				fmt.Fprint(out, "Fetching title... ")
				fetched, err := fetcher.New().FetchTitle(ctx, pageURL)
				if err != nil {
					fmt.Fprintln(out, "failed")
					return err
				}
				fmt.Fprintln(out, "done")
				title = fetched
			}
			if title == "" {
				return fmt.Errorf("a title or --url is required")
			}

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if labelRef == "" && suggest {
				labelRef, err = suggestLabel(ctx, out, s, title)
				if err != nil {
					return err
				}
			}
			if labelRef == "" {
				return fmt.Errorf("--label is required")
			}

			label, err := findLabel(ctx, s.svc, labelRef)
			if err != nil {
				return err
			}

			content, err := s.svc.CreateContent(ctx, title, label.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Added content: %s\n", shortID(content.ID))
			fmt.Fprintf(out, "Title: %s\n", truncate(content.Title, 80))
			printSchedule(out, content.Reviews)
			return nil
		},
	}

	cmd.Flags().StringVarP(&labelRef, "label", "l", "", "label name or id")
	cmd.Flags().StringVar(&url, "url", "", "take the title from this web page")
	cmd.Flags().BoolVar(&suggest, "suggest-label", false, "ask the classifier to pick a label")
	return cmd
}

func suggestLabel(ctx context.Context, out io.Writer, s *session, title string) (string, error) {
	clf, err := classifier.New(s.cfg.Classifier.APIKey, s.cfg.Classifier.Model)
	if err != nil {
		return "", err
	}

	labels, err := s.svc.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}

	fmt.Fprint(out, "Classifying... ")
	suggestion, err := clf.SuggestLabel(ctx, title, names)
	if err != nil {
		fmt.Fprintln(out, "failed")
		return "", err
	}
	fmt.Fprintf(out, "%s (%.0f%%)\n", suggestion.Label, suggestion.Confidence*100)
	return suggestion.Label, nil
}

func (a *app) contentListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			contents, err := s.svc.ListContents(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(contents) == 0 {
				fmt.Fprintln(out, ui.Dim("No content yet."))
				return nil
			}

			if limit > 0 && len(contents) > limit {
				contents = contents[:limit]
			}
			for _, c := range contents {
				done := 0
				for _, r := range c.Reviews {
					if r.Completed {
						done++
					}
				}
				fmt.Fprintf(out, "%s  %s  %s %d/%d  %s\n",
					shortID(c.ID), c.CreatedAt.Format("2006-01-02"), ui.Pad(ui.Label(c.LabelName, c.LabelColor), 14),
					done, len(c.Reviews), truncate(c.Title, 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max items (0 = all)")
	return cmd
}

func (a *app) contentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <content>",
		Short: "Show content and its review schedule",
		Args:  cobra.ExactArgs(1),
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", c.ID)
			fmt.Fprintf(out, "Title: %s\n", ui.Header(c.Title))
			fmt.Fprintf(out, "Label: %s %s\n", ui.Label(c.LabelName, c.LabelColor), c.LabelColor)
			fmt.Fprintf(out, "Created: %s\n", c.CreatedAt.In(s.svc.Now().Location()).Format("2006-01-02 15:04"))
			printSchedule(out, c.Reviews)
			return nil
		},
	}
}

func (a *app) contentUpdateCmd() *cobra.Command {
	var title, labelRef string

	cmd := &cobra.Command{
		Use:   "update <content>",
		Short: "Change the title or label of content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && labelRef == "" {
				return fmt.Errorf("nothing to update: pass --title and/or --label")
			}

			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := findContent(ctx, s.svc, args[0])
			if err != nil {
				return err
			}

			labelID := c.LabelID
			if labelRef != "" {
				label, err := findLabel(ctx, s.svc, labelRef)
				if err != nil {
					return err
				}
				labelID = label.ID
			}
			if title == "" {
				title = c.Title
			}

			if err := s.svc.UpdateContent(ctx, c.ID, title, labelID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated content: %s\n", shortID(c.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&labelRef, "label", "l", "", "new label name or id")
	return cmd
}

func (a *app) contentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <content>",
		Short: "Delete content together with its reviews",
		Args:  cobra.ExactArgs(1),
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
			if err := s.svc.DeleteContent(cmd.Context(), c.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted content: %s\n", truncate(c.Title, 60))
			return nil
		},
	}
}

func printSchedule(w io.Writer, reviews []domain.ReviewOccurrence) {
	offsets := make(map[domain.ReviewType]string)
	for _, o := range schedule.Offsets() {
		offsets[o.Type] = o.String()
	}

	fmt.Fprintln(w, "Reviews:")
	for _, r := range reviews {
		fmt.Fprintf(w, "  %s %-12s %s  %s\n", ui.Check(r.Completed), r.Type, r.ScheduledDate, ui.Dim(offsets[r.Type]))
	}
}
