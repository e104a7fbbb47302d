package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okian/intellinbox/internal/domain/model"
)

func (a *app) inboxesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inboxes",
		Aliases: []string{"inbox"},
		Short:   "Manage monitored inboxes",
	}
	cmd.AddCommand(
		a.inboxListCommand(),
		a.inboxCreateCommand(),
		a.idCommand("delete", "Delete inboxes", "delete", func(ctx context.Context, id int64) error {
			return a.client.DeleteInbox(ctx, id)
		}),
		a.inboxStatusCommand("activate", true),
		a.inboxStatusCommand("deactivate", false),
		a.idCommand("sync", "Start a sync of inboxes", "sync", func(ctx context.Context, id int64) error {
			return a.client.SyncInbox(ctx, id)
		}),
		a.inboxResetCommand(),
	)
	return cmd
}

func (a *app) inboxListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List inboxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.ListInboxes(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd).inboxes(list)
		},
	}
}

func (a *app) inboxCreateCommand() *cobra.Command {
	var (
		in       model.InboxCreate
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := readPassword(cmd)
				if err != nil {
					return err
				}
				in.Password = pw
			}
			active := !inactive
			in.IsActive = &active
			created, err := a.client.CreateInbox(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printer(cmd).inbox(created)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.EmailAddress, "email", "", "mailbox address")
	f.StringVar(&in.Password, "password", "", "mailbox password or app password (prompted for when omitted)")
	f.StringVar(&in.IMAPServer, "imap-server", model.DefaultIMAPServer, "IMAP host[:port]")
	f.BoolVar(&inactive, "inactive", false, "register the inbox without monitoring it")
	f.IntVar(&in.SyncDays, "sync-days", 0, "initial sync window in days (0 uses the backend default)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) inboxStatusCommand(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: fmt.Sprintf("Set an inbox's is_active flag to %t", active),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := a.client.UpdateInboxStatus(cmd.Context(), id, active)
			if err != nil {
				return err
			}
			return a.printer(cmd).inbox(in)
		},
	}
}

func (a *app) inboxResetCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "reset ID",
		Short: "Clear an inbox's emails and re-sync the last N days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.ResetInbox(cmd.Context(), id, days); err != nil {
				return err
			}
			return a.printer(cmd).message(fmt.Sprintf("reset of inbox %d started (%d days)", id, days))
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days of history to re-sync")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

// readPassword prompts on the terminal without echo. Non-interactive input
// must pass --password.
func readPassword(cmd *cobra.Command) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("%w: --password is required when stdin is not a terminal", ErrUsage)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
