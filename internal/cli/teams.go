package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"triagedesk/dashboard/internal/presentation"
	"triagedesk/dashboard/internal/service"
)

func newTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List support teams and intent assignment rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			view, err := Svc.TeamManagement(ctx)
			if err != nil {
				return fmt.Errorf("loading teams: %s", userMessage(err))
			}
			renderTeams(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func renderTeams(w io.Writer, view *service.TeamManagementView) {
	fmt.Fprintln(w, titleStyle.Render(" Teams "))
	if len(view.Teams) == 0 {
		fmt.Fprintln(w, "  No teams configured.")
	}
	for _, t := range view.Teams {
		status := presentation.Badge(t.Status, presentation.TeamStatusColor(t.Status))
		fmt.Fprintf(w, "  %-20s %-10s %d members  %s\n", t.Name, status, t.MemberCount, labelStyle.Render(t.Description))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(" Assignment Rules "))
	for _, r := range view.Rules {
		team := r.TeamName
		if team == "" {
			team = labelStyle.Render("(unassigned)")
		}
		fmt.Fprintf(w, "  %-20s → %s\n", r.Label, team)
	}
}
