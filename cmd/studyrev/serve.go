package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/studyrev/internal/api"
	"github.com/pbaille/studyrev/internal/export"
	"github.com/pbaille/studyrev/internal/reminder"
	"github.com/pbaille/studyrev/internal/ui"
)

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export content and reviews to an Excel workbook",
		Args:  cobra.ExactArgs(1),
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
			if err := export.SaveAs(args[0], contents); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contents to %s\n", len(contents), args[0])
			return nil
		},
	}
}

func (a *app) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send today's review digest once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			notifiers, err := s.notifiers(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			loc := s.svc.Now().Location()
			return reminder.New(s.svc, s.cfg.Reminder.At, loc, notifiers...).RunOnce(cmd.Context())
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}

			if s.cfg.Reminder.Enabled {
				notifiers, err := s.notifiers(os.Stderr)
				if err != nil {
					return err
				}
				r := reminder.New(s.svc, s.cfg.Reminder.At, s.svc.Now().Location(), notifiers...)
				if err := r.Start(ctx); err != nil {
					return err
				}
				defer r.Stop()
			}

			return api.New(s.svc, addr).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// notifiers always logs the digest and also sends it to Telegram when a
// bot token is configured
func (s *session) notifiers(w io.Writer) ([]reminder.Notifier, error) {
	notifiers := []reminder.Notifier{reminder.NewLogNotifier(w)}

	if s.cfg.Telegram.Token == "" {
		return notifiers, nil
	}
	tg, err := reminder.NewTelegramNotifier(s.cfg.Telegram.Token, s.cfg.Telegram.ChatID)
	if err != nil {
		return nil, err
	}
	ui.Logger.Info("telegram reminders enabled", "chat", s.cfg.Telegram.ChatID)
	return append(notifiers, tg), nil
}
