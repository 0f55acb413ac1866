package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
	"github.com/iliyamo/methodcheck-testserver/internal/findings"
	"github.com/iliyamo/methodcheck-testserver/internal/probe"
	"github.com/iliyamo/methodcheck-testserver/internal/queue"
	"github.com/iliyamo/methodcheck-testserver/internal/service"
)

type checkOptions struct {
	Method  string
	Timeout time.Duration
	Dedupe  bool
	Recheck bool
	Publish bool
}

var checkOpts checkOptions

// checkCmd probes one URL with OPTIONS and reports extra methods.
var checkCmd = &cobra.Command{
	Use:   "check URL",
	Short: "Send an OPTIONS probe to URL and report advertised methods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fcfg := config.LoadFindingsConfig()

		store, closeStore, err := openStore(ctx, checkOpts, fcfg, config.NewRedisClient)
		if err != nil {
			return err
		}
		defer closeStore()

		var publish publishFunc
		if checkOpts.Publish {
			publish = func(ctx context.Context, ev queue.FindingEvent) error {
				return service.PublishFinding(ctx, fcfg.BrokerURL, ev, log)
			}
		}

		return runCheck(ctx, cmd.OutOrStdout(), args[0], checkOpts, probe.New(checkOpts.Timeout), store, publish, log)
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkOpts.Method, "method", "m", "GET", "method the URL was originally requested with")
	checkCmd.Flags().DurationVar(&checkOpts.Timeout, "timeout", 10*time.Second, "probe timeout")
	checkCmd.Flags().BoolVar(&checkOpts.Dedupe, "dedupe", false, "report each host/path/method finding once (Redis when reachable)")
	checkCmd.Flags().BoolVar(&checkOpts.Recheck, "recheck", false, "forget a previous finding for this URL before checking (implies --dedupe)")
	checkCmd.Flags().BoolVar(&checkOpts.Publish, "publish", false, "publish new findings to RabbitMQ")
}

// errNoRedis is returned when deduplication is requested but Redis cannot be
// reached.  An in-process store would be discarded when the command exits.
var errNoRedis = errors.New("--dedupe and --recheck need a reachable Redis (set REDIS_ADDR)")

// openStore returns the dedupe store for opts, or nil when neither --dedupe
// nor --recheck was given.  --recheck implies --dedupe.
func openStore(ctx context.Context, opts checkOptions, fcfg config.FindingsConfig, connect func(context.Context) *redis.Client) (*findings.Store, func(), error) {
	noop := func() {}
	if !opts.Dedupe && !opts.Recheck {
		return nil, noop, nil
	}
	rdb := connect(ctx)
	if rdb == nil {
		return nil, noop, errNoRedis
	}
	return findings.NewStore(rdb, fcfg.Prefix, fcfg.TTL), func() { _ = rdb.Close() }, nil
}

type publishFunc func(context.Context, queue.FindingEvent) error

func runCheck(ctx context.Context, out io.Writer, target string, opts checkOptions, p *probe.Prober, store *findings.Store, publish publishFunc, log zerolog.Logger) error {
	res, err := p.Check(ctx, target, opts.Method)
	if err != nil {
		return err
	}
	log.Debug().Str("url", target).Int("status", res.Status).
		Strs("allow", res.AllowMethods).Strs("cors", res.CORSMethods).Msg("options probe complete")

	fmt.Fprintf(out, "%s %s -> OPTIONS %d\n", res.Method, res.URL, res.Status)
	fmt.Fprintf(out, "  Allow:                        %s\n", strings.Join(res.AllowMethods, ", "))
	fmt.Fprintf(out, "  Access-Control-Allow-Methods: %s\n", strings.Join(res.CORSMethods, ", "))

	if !res.HasFindings() {
		fmt.Fprintln(out, "No additional methods found")
		return nil
	}

	f, err := probe.NewFinding(res, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, f.Title)

	if store != nil {
		if opts.Recheck {
			if err := store.Forget(ctx, f.DedupeKey); err != nil {
				return err
			}
		}
		fresh, err := store.Claim(ctx, f.DedupeKey)
		if err != nil {
			return err
		}
		if !fresh {
			fmt.Fprintf(out, "Finding already reported (%s)\n", f.DedupeKey)
			return nil
		}
	}

	if publish != nil {
		if err := publish(ctx, queue.NewFindingEvent(f, res.Status)); err != nil {
			return fmt.Errorf("publish finding: %w", err)
		}
		fmt.Fprintf(out, "Published finding %s\n", f.DedupeKey)
	}
	return nil
}
