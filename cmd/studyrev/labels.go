package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/studyrev/internal/ui"
)

func (a *app) labelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "label",
		Aliases: []string{"labels"},
		Short:   "Manage labels",
	}

	cmd.AddCommand(a.labelAddCmd())
	cmd.AddCommand(a.labelListCmd())
	cmd.AddCommand(a.labelUpdateCmd())
	cmd.AddCommand(a.labelDeleteCmd())
	return cmd
}

func (a *app) labelAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <color>",
		Short: "Create a label, color as #RRGGBB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			label, err := s.svc.CreateLabel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added label: %s %s %s\n", shortID(label.ID), ui.Label(label.Name, label.Color), label.Color)
			return nil
		},
	}
}

func (a *app) labelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			labels, err := s.svc.ListLabels(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(labels) == 0 {
				fmt.Fprintln(out, ui.Dim("No labels yet."))
				return nil
			}

			for _, l := range labels {
				fmt.Fprintf(out, "%s  %s  %s\n", ui.Dim(shortID(l.ID)), l.Color, ui.Label(l.Name, l.Color))
			}
			return nil
		},
	}
}

func (a *app) labelUpdateCmd() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "update <label>",
		Short: "Rename or recolor a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && color == "" {
				return fmt.Errorf("nothing to update: pass --name and/or --color")
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			label, err := findLabel(cmd.Context(), s.svc, args[0])
			if err != nil {
				return err
			}

			if name == "" {
				name = label.Name
			}
			if color == "" {
				color = label.Color
			}
			if err := s.svc.UpdateLabel(cmd.Context(), label.ID, name, color); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated label: %s\n", shortID(label.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color (#RRGGBB)")
	return cmd
}

func (a *app) labelDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label>",
		Short: "Delete a label that no content uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			label, err := findLabel(cmd.Context(), s.svc, args[0])
			if err != nil {
				return err
			}
			if err := s.svc.DeleteLabel(cmd.Context(), label.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted label: %s\n", label.Name)
			return nil
		},
	}
}
