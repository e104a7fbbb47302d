package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *app) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd).status(st)
		},
	}
}

func (a *app) syncAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-all",
		Short: "Ask the backend to sync every active inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.TriggerSyncAll(cmd.Context()); err != nil {
				return err
			}
			return a.printer(cmd).message("sync of all inboxes started")
		},
	}
}

// idCommand builds a command applying op to one or more ids.
func (a *app) idCommand(use, short, verb string, op func(context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return a.fanOut(cmd, verb, ids, op)
		},
	}
}
