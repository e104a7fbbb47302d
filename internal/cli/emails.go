package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/intellinbox/internal/adapters/http/client"
	"github.com/okian/intellinbox/internal/domain/model"
)

func (a *app) emailsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emails",
		Aliases: []string{"email"},
		Short:   "Inspect and manage ingested emails",
	}
	cmd.AddCommand(
		a.emailListCommand(),
		a.emailGetCommand(),
		a.emailCreateCommand(),
		a.idCommand("delete", "Delete emails", "delete", func(ctx context.Context, id int64) error {
			return a.client.DeleteEmail(ctx, id)
		}),
		a.idCommand("reanalyze", "Queue emails for another analysis pass", "reanalyze", func(ctx context.Context, id int64) error {
			return a.client.RerunAnalysis(ctx, id)
		}),
	)
	return cmd
}

func (a *app) emailListCommand() *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []client.ListOption
			if cmd.Flags().Changed("skip") {
				opts = append(opts, client.WithSkip(skip))
			}
			if cmd.Flags().Changed("limit") {
				opts = append(opts, client.WithLimit(limit))
			}
			list, err := a.client.ListEmails(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			return a.printer(cmd).emails(list)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "number of emails to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of emails to return")
	return cmd
}

func (a *app) emailGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one email with its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.client.GetEmail(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printer(cmd).email(e)
		},
	}
}

func (a *app) emailCreateCommand() *cobra.Command {
	var in model.EmailCreate
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Store an email directly, bypassing IMAP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.client.CreateEmail(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printer(cmd).email(e)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Sender, "sender", "", "sender address")
	f.StringVar(&in.Receiver, "receiver", "", "receiver address")
	f.StringVar(&in.Subject, "subject", "", "subject line")
	f.StringVar(&in.Body, "body", "", "message body")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("receiver")
	return cmd
}
