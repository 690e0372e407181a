package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/j3k0/haproxy-statsd/config"
	"github.com/j3k0/haproxy-statsd/internal/haproxy"
	"github.com/j3k0/haproxy-statsd/internal/httpserver"
	"github.com/j3k0/haproxy-statsd/internal/metrics"
	"github.com/j3k0/haproxy-statsd/internal/poller"
	"github.com/j3k0/haproxy-statsd/internal/reporter"
	"github.com/j3k0/haproxy-statsd/internal/statsd"
	"github.com/j3k0/haproxy-statsd/pkg/logger"
)

const eventBufferSize = 256

type options struct {
	configPath string
	once       bool
	help       bool
}

func main() {
	opts, flagSet, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\nRun 'haproxy-statsd --help' for usage.\n", err)
		os.Exit(2)
	}

	if opts.help {
		printHelp(os.Stdout, flagSet)
		return
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.LogLevel, cfg.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts.once, log); err != nil {
		log.Error("Reporter stopped", slog.Any("err", err))
		cancel()
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	var opts options

	flagSet := pflag.NewFlagSet("haproxy-statsd", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config file location (default: search haproxy-statsd.{yaml,json,toml} in . and /etc/haproxy-statsd)")
	flagSet.BoolVarP(&opts.once, "once", "1", false, "run once and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}

	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	return &opts, flagSet, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Report HAProxy stats to StatsD.

Polls the HAProxy stats CSV endpoint and sends one gauge per stat, per
proxy and server, to a StatsD daemon over UDP.

Usage:
  haproxy-statsd [flags]

Flags:
%s`, flagSet.FlagUsages())
}

// run wires the reporting pipeline and polls until ctx is cancelled, a
// cycle fails, or the single cycle of once mode completes.
func run(ctx context.Context, cfg *config.Config, once bool, log *slog.Logger) (err error) {
	namespace, err := cfg.Namespace()
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(eventBufferSize, log)
	collector.Start(ctx)

	emitter, err := statsd.Dial(cfg.StatsdAddr(),
		statsd.WithMaxPacketSize(cfg.MaxPacketSize),
		statsd.WithFlushHook(func(size int) {
			collector.Publish(metrics.MetricEvent{Type: metrics.EventPacketSent, Bytes: size})
		}))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, emitter.Close())
	}()

	if cfg.StatusAddr != "" && !once {
		srv, err := startStatusServer(cfg.StatusAddr, collector, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Error("Error during status server shutdown", slog.Any("err", err))
			}
		}()
	}

	client := haproxy.NewClient(cfg.HAProxyURL, cfg.HAProxyUser, cfg.HAProxyPassword, nil)
	rep := reporter.New(client, haproxy.NewMapper(namespace), emitter, collector, log)

	log.Info("Reporting HAProxy stats",
		slog.String("haproxy_url", client.URL()),
		slog.String("statsd", cfg.StatsdAddr()),
		slog.String("namespace", namespace),
		slog.Duration("interval", cfg.IntervalDuration()),
		slog.Bool("once", once))

	err = poller.Run(ctx, rep.Cycle, poller.Options{
		Interval:  cfg.IntervalDuration(),
		Once:      once,
		KeepGoing: cfg.KeepGoing,
	}, log)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func startStatusServer(addr string, collector *metrics.Collector, log *slog.Logger) (*httpserver.Server, error) {
	srv, err := httpserver.New(addr, setupRouter(collector))
	if err != nil {
		return nil, fmt.Errorf("status server: %w", err)
	}

	if err := srv.Listen(); err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("Status server failed", slog.Any("err", err))
		}
	}()

	log.Info("Serving status", slog.String("addr", srv.Addr()))

	return srv, nil
}
