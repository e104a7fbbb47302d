// Package cli implements the inboxctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/intellinbox/internal/adapters/http/client"
	"github.com/okian/intellinbox/internal/batch"
	"github.com/okian/intellinbox/internal/config"
	"github.com/okian/intellinbox/internal/domain/model"
	"github.com/okian/intellinbox/pkg/logger"
	"github.com/okian/intellinbox/pkg/metrics"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfg         *config.Config
	log         logger.Logger
	metrics     *metrics.Manager
	output      string
	showMetrics bool

	client *client.Client
}

// NewRootCommand builds the inboxctl command tree. Flags start from cfg and
// override it when set.
func NewRootCommand(cfg *config.Config, log logger.Logger) *cobra.Command {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	a := &app{
		cfg:     cfg,
		log:     log.Named("cli"),
		metrics: metrics.NewManager(),
		output:  OutputTable,
	}

	root := &cobra.Command{
		Use:   "inboxctl",
		Short: "Manage IntellInbox inboxes and emails",
		Long: `inboxctl drives an IntellInbox backend over its REST API.

Examples:
  inboxctl inboxes list
  inboxctl inboxes create --email me@example.com --password secret
  inboxctl inboxes sync 1 2 3
  inboxctl emails list --limit 20 -o json
  inboxctl emails reanalyze 42`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.showMetrics {
				return nil
			}
			return a.metrics.WriteText(cmd.ErrOrStderr())
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "backend base URL")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (0 disables)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	f.BoolVar(&cfg.Trace, "trace", cfg.Trace, "dump requests and responses at debug level")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent requests for multi-id commands")
	f.Float64Var(&cfg.RateLimit, "rps", cfg.RateLimit, "requests per second for multi-id commands (0 is unlimited)")
	f.StringVarP(&a.output, "output", "o", a.output, "output format: table or json")
	f.BoolVar(&a.showMetrics, "metrics", false, "print request metrics to stderr on exit")

	root.AddCommand(
		a.pingCommand(),
		a.syncAllCommand(),
		a.inboxesCommand(),
		a.emailsCommand(),
	)
	return root
}

// Execute runs the command tree with args and reports the first error.
func Execute(ctx context.Context, cfg *config.Config, log logger.Logger, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(cfg, log)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return usageError(root.ExecuteContext(ctx))
}

// usageError reports input rejected before any request as a usage error.
// Per-id batch failures keep ErrFailed.
func usageError(err error) error {
	if errors.Is(err, model.ErrInvalidInput) && !errors.Is(err, ErrUsage) && !errors.Is(err, ErrFailed) {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("log-level") {
		if err := logger.SetLevelString(a.cfg.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}
	if a.output != OutputTable && a.output != OutputJSON {
		return fmt.Errorf("%w: unknown output format %q", ErrUsage, a.output)
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	c, err := client.New(a.cfg.BaseURL,
		client.WithTimeout(a.cfg.Timeout),
		client.WithLogger(a.log.Named("client")),
		client.WithMetrics(a.metrics),
		client.WithUserAgent(a.cfg.UserAgent),
		client.WithAPIToken(a.cfg.APIToken),
		client.WithTrace(a.cfg.Trace),
	)
	if err != nil {
		return err
	}
	a.client = c
	a.log.Debug(cmd.Context(), "client ready",
		logger.String("base_url", c.BaseURL()),
		logger.String("command", cmd.CommandPath()))
	return nil
}

// fanOut applies fn to every id with the configured worker limit and
// reports the outcome.
func (a *app) fanOut(cmd *cobra.Command, verb string, ids []int64, fn batch.Func) error {
	res := batch.Run(cmd.Context(), ids, fn,
		batch.WithWorkers(a.cfg.Workers),
		batch.WithRateLimit(a.cfg.RateLimit),
		batch.WithName(verb),
		batch.WithLogger(a.log),
	)
	if err := a.printer(cmd).batch(verb, res); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFailed, verb, err)
	}
	return nil
}

func (a *app) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: a.output}
}

// parseIDs parses positive integer ids.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, arg)
	}
	return id, nil
}
