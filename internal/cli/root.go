// Package cli implements the f2b-notifier command line.
//
// fail2ban action files have called the notifier in two shapes over time:
//
//	f2b-notifier <webhook> <action> <jail> [<ip> [<failures>]]
//	f2b-notifier --webhook <webhook> --action <action> --jail <jail> [--ip <ip>] [--failures <n>]
//
// Both are accepted, and may be mixed; a flag wins over the positional in the same slot.
package cli

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hive-corporation/f2b-notifier/internal/adapter/geo"
	"github.com/hive-corporation/f2b-notifier/internal/adapter/metrics"
	"github.com/hive-corporation/f2b-notifier/internal/adapter/notifier"
	"github.com/hive-corporation/f2b-notifier/internal/app"
	"github.com/hive-corporation/f2b-notifier/internal/config"
	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
	"github.com/hive-corporation/f2b-notifier/internal/core/ports"
	"github.com/hive-corporation/f2b-notifier/internal/logger"
)

// Build information, set by main from ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const (
	ExitOK    = 0
	ExitUsage = 2
)

const metricsPushTimeout = 2 * time.Second

// positional slots, in legacy order
var slots = []string{"webhook", "action", "jail", "ip", "failures"}

type options struct {
	webhook    string
	action     string
	jail       string
	ip         string
	failures   int
	configFile string
	dryRun     bool

	req domain.ActionRequest
}

// Run executes the command with args and returns the process exit code. Only a malformed
// invocation yields a nonzero code; network failures are logged and still exit 0.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(normalizeArgs(args))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return ExitUsage
	}
	return ExitOK
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "f2b-notifier [WEBHOOK ACTION JAIL [IP [FAILURES]]]",
		Short: "Post fail2ban ban/unban/start/stop events to a Slack webhook",
		Long: "f2b-notifier is called from a fail2ban action. It formats the event, looks up the\n" +
			"country of banned addresses, and posts the message to a Slack incoming webhook.\n" +
			"Delivery problems are logged and never change the exit status.",
		Example: "  f2b-notifier T000/B000/XXXX ban sshd 203.0.113.7 5\n" +
			"  f2b-notifier --webhook T000/B000/XXXX --action stop --jail sshd",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		Args:    cobra.MaximumNArgs(len(slots)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd.Flags(), opts, args)
			if err != nil {
				return err
			}
			opts.req = req
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			// Past this point nothing is a usage error.
			cmd.SilenceUsage = true

			execute(cmd.Context(), cfg, opts.req, opts.dryRun, stdout, stderr)
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.webhook, "webhook", "", "Slack webhook path after /services/ (T000/B000/XXXX)")
	f.StringVar(&opts.action, "action", "", "fail2ban action: "+strings.Join(domain.ActionNames(), ", "))
	f.StringVar(&opts.jail, "jail", "", "fail2ban jail name")
	f.StringVar(&opts.ip, "ip", "", "offending IP address")
	f.IntVar(&opts.failures, "failures", 0, "number of failures that triggered the ban")
	f.StringVar(&opts.configFile, "config", "", "optional YAML config file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the message instead of posting it")

	return cmd
}

var negativeNumber = regexp.MustCompile(`^-\d+$`)

// flags that consume the following token as their value
var valueFlags = map[string]bool{
	"--webhook": true, "--action": true, "--jail": true,
	"--ip": true, "--failures": true, "--config": true,
}

// normalizeArgs moves positional negative numbers (a legacy failures count such as -1)
// behind a "--" separator so pflag does not read them as shorthand flags. Positionals after
// a moved number follow it, so their relative order is kept.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	var moved []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			out = append(out, "--")
			out = append(out, moved...)
			return append(out, args[i+1:]...)
		case valueFlags[arg] && i+1 < len(args):
			out = append(out, arg, args[i+1])
			i++
		case negativeNumber.MatchString(arg), len(moved) > 0 && !strings.HasPrefix(arg, "-"):
			moved = append(moved, arg)
		default:
			out = append(out, arg)
		}
	}

	if len(moved) > 0 {
		out = append(out, "--")
		out = append(out, moved...)
	}
	return out
}

// buildRequest folds positionals and flags into one ActionRequest and validates it.
func buildRequest(flags *pflag.FlagSet, opts *options, args []string) (domain.ActionRequest, error) {
	values := map[string]string{}
	for i, arg := range args {
		values[slots[i]] = arg
	}

	pick := func(name, flagValue string) string {
		if flags.Changed(name) {
			return flagValue
		}
		return values[name]
	}

	req := domain.ActionRequest{
		WebhookPath: pick("webhook", opts.webhook),
		Jail:        pick("jail", opts.jail),
		IP:          pick("ip", opts.ip),
	}

	action, err := domain.ParseActionType(pick("action", opts.action))
	if err != nil {
		return domain.ActionRequest{}, err
	}
	req.Action = action

	switch {
	case flags.Changed("failures"):
		req.Failures = opts.failures
	case values["failures"] != "":
		n, err := strconv.Atoi(values["failures"])
		if err != nil {
			return domain.ActionRequest{}, fmt.Errorf("invalid failures %q: must be an integer", values["failures"])
		}
		req.Failures = n
	}

	if err := req.Validate(); err != nil {
		return domain.ActionRequest{}, err
	}
	return req, nil
}

// execute wires adapters from cfg and runs one dispatch. It never fails.
func execute(ctx context.Context, cfg config.Config, req domain.ActionRequest, dryRun bool, stdout, stderr io.Writer) app.Result {
	logger.Init(cfg.Log.Level, stderr)
	metrics.InitMetrics()

	var locator ports.Geolocator = geo.Disabled{}
	if cfg.Geo.Enabled {
		locator = geo.NewIPInfoProvider(nil, cfg.Geo.BaseURL, cfg.Geo.Token, cfg.Geo.Timeout)
	}

	slack := notifier.NewSlackWebhookNotifier(
		cfg.Slack.BaseURL,
		cfg.Slack.Channel,
		cfg.Slack.Username,
		cfg.Slack.Timeout,
		notifier.WithIconEmoji(cfg.Slack.IconEmoji),
	)

	res := app.NewDispatcher(locator, slack, dryRun, stdout).Dispatch(ctx, req)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(ctx, metricsPushTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logger.Warn("⚠️  %v", err)
		}
	}

	return res
}
