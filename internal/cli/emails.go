package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"triagedesk/dashboard/internal/domain"
	"triagedesk/dashboard/internal/service"
)

// 主题列在列表中的最大宽度
const subjectWidth = 40

type emailsOptions struct {
	filters domain.EmailFilters
	sort    string
	order   string
}

func newEmailsCmd() *cobra.Command {
	opts := &emailsOptions{}
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List emails with optional filters",
		Long: `List emails from the triage backend.

Filters are passed to the backend except --priority, which is applied locally.
Sort by received, priority, status or subject; order asc or desc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			view, err := Svc.EmailList(ctx, opts.filters, service.ParseSort(opts.sort, opts.order))
			if err != nil {
				return fmt.Errorf("Error loading emails. Please try again. (%s)", userMessage(err))
			}
			renderEmailList(cmd.OutOrStdout(), view)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.filters.Status, "status", "", "filter by status, e.g. RECEIVED")
	f.StringVar(&opts.filters.Priority, "priority", "", "filter by priority, e.g. HIGH")
	f.StringVar(&opts.filters.Intent, "intent", "", "filter by intent, e.g. REFUND_REQUEST")
	f.StringVar(&opts.filters.Team, "team", "", "filter by assigned team")
	f.StringVar(&opts.filters.User, "assignee", "", "filter by assigned user id")
	f.StringVar(&opts.sort, "sort", "received", "sort field: received, priority, status, subject")
	f.StringVar(&opts.order, "order", "desc", "sort order: asc or desc")
	return cmd
}

func renderEmailList(w io.Writer, view *service.EmailListView) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(" Emails (%d) ", view.Count)))
	if view.Count == 0 {
		fmt.Fprintln(w, "  No emails match the current filters.")
		return
	}
	for _, row := range view.Emails {
		fmt.Fprintf(w, "  %-12s %-16s %-10s %-*s %s\n",
			row.ID,
			statusBadge(row.Status),
			priorityBadge(row.Priority),
			subjectWidth, truncate(row.Subject, subjectWidth),
			labelStyle.Render(row.Received),
		)
	}
}

func newEmailCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Show or act on a single email",
	}
	cmd.AddCommand(
		newEmailShowCmd(),
		newEmailStatusCmd(),
		newEmailShortcutCmd("assign", "Mark the email as assigned", Service.Assign),
		newEmailShortcutCmd("escalate", "Escalate the email", Service.Escalate),
		newEmailReplyCmd(root),
	)
	return cmd
}

func newEmailShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show email details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			view, err := Svc.EmailDetail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("Error loading email. Please try again. (%s)", userMessage(err))
			}
			renderEmailDetail(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func renderEmailDetail(w io.Writer, view *service.EmailDetailView) {
	e := view.Email
	fmt.Fprintln(w, titleStyle.Render(" "+e.Subject+" "))
	fields := []struct{ label, value string }{
		{"From", e.From},
		{"To", e.To},
		{"Received", view.Received},
		{"Processed", view.Processed},
		{"Status", statusBadge(e.Status)},
		{"Priority", priorityBadge(e.Priority)},
		{"Intent", fmt.Sprintf("%s (%s)", e.IntentLabel, e.Confidence)},
		{"Team", e.AssignedTeam},
		{"Assignee", e.AssignedUser},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", f.label)), f.value)
	}
	if e.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, lipgloss.NewStyle().PaddingLeft(2).Render(e.Body))
	}
	if e.FinalReply != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("  Reply"))
		fmt.Fprintln(w, lipgloss.NewStyle().PaddingLeft(2).Render(e.FinalReply))
	}
}

func newEmailStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the email status (case-insensitive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := domain.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q (one of %s)", args[1], joinValues(domain.AllStatuses()))
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			email, err := Svc.UpdateStatus(ctx, args[0], status)
			if err != nil {
				return fmt.Errorf("Failed to update email. Please try again. (%s)", userMessage(err))
			}
			printUpdated(cmd.OutOrStdout(), email)
			return nil
		},
	}
}

// newEmailShortcutCmd assign / escalate 只需要邮件 ID
func newEmailShortcutCmd(use, short string, action func(Service, context.Context, string) (*domain.Email, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			email, err := action(Svc, ctx, args[0])
			if err != nil {
				return fmt.Errorf("Failed to update email. Please try again. (%s)", userMessage(err))
			}
			printUpdated(cmd.OutOrStdout(), email)
			return nil
		},
	}
}

func newEmailReplyCmd(root *rootOptions) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "reply <id>",
		Short: "Send a reply to the customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			email, err := Svc.SendReply(ctx, args[0], message, root.userID)
			if err != nil {
				var vErr *domain.ValidationError
				if errors.As(err, &vErr) {
					return errors.New(vErr.Message)
				}
				return fmt.Errorf("Failed to send reply. Please try again. (%s)", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Reply sent successfully!"))
			printUpdated(cmd.OutOrStdout(), email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "reply body")
	return cmd
}

func printUpdated(w io.Writer, e *domain.Email) {
	fmt.Fprintf(w, "  %s  %s  %s\n", e.ID, statusBadge(e.Status), priorityBadge(e.Priority))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
