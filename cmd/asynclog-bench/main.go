package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/philipp01105/asynclog/async"
	"github.com/philipp01105/asynclog/config"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler"
	"github.com/philipp01105/asynclog/handler/consolehandler"
	"github.com/philipp01105/asynclog/logctx"
	"github.com/philipp01105/asynclog/logger"
)

type benchOptions struct {
	configPath string
	producers  int
	events     int
	ringSize   int
	policy     string
	wait       string
	mode       string
	discard    bool
	drain      time.Duration
}

func main() {
	var opts benchOptions

	rootCmd := &cobra.Command{
		Use:   "asynclog-bench",
		Short: "Load generator for asynclog logging contexts",
		Long: "asynclog-bench starts a logging context, logs from concurrent producers " +
			"and prints the ring buffer snapshot and counters after the drain.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), opts)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML or JSON configuration file")
	f.IntVarP(&opts.producers, "producers", "p", 4, "number of producer goroutines")
	f.IntVarP(&opts.events, "events", "n", 100000, "events per producer")
	f.IntVar(&opts.ringSize, "ring-size", 0, "ring buffer slots, a power of two (0 keeps the configured size)")
	f.StringVar(&opts.policy, "policy", "", "full-buffer policy: enqueue, discard or synchronous")
	f.StringVar(&opts.wait, "wait", "", "consumer wait strategy: progressive, yield or sleep")
	f.StringVar(&opts.mode, "mode", "", "sync or async")
	f.BoolVar(&opts.discard, "discard", true, "write formatted output to io.Discard instead of the configured appender")
	f.DurationVar(&opts.drain, "drain-timeout", 10*time.Second, "bound on the final drain")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(opts benchOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	config.FromEnv(&cfg)
	if cfg.Name == "" {
		cfg.Name = "bench"
	}
	if opts.ringSize > 0 {
		cfg.RingBufferSize = opts.ringSize
	}
	if opts.policy != "" {
		if cfg.FullBufferPolicy, err = async.ParsePolicy(opts.policy); err != nil {
			return cfg, err
		}
	}
	if opts.wait != "" {
		if cfg.WaitStrategy, err = async.ParseWaitStrategy(opts.wait); err != nil {
			return cfg, err
		}
	}
	if opts.mode != "" {
		cfg.Mode = config.Mode(opts.mode)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, out io.Writer, opts benchOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var app handler.Handler
	if opts.discard {
		app = consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
			Writer:    io.Discard,
			Formatter: formatter.NewJSONFormatter(formatter.Config{}),
		})
	} else if app, err = logctx.NewAppender(cfg); err != nil {
		return err
	}

	lc, err := logctx.New(cfg.Name, cfg, app)
	if err != nil {
		_ = app.Close()
		return err
	}
	if err := lc.Start(); err != nil {
		return err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < opts.producers; p++ {
		log := lc.Logger(fmt.Sprintf("producer-%d", p))
		g.Go(func() error {
			for i := 0; i < opts.events; i++ {
				if i&1023 == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				log.Info("bench event", logger.Int("seq", i), logger.String("kind", "load"))
			}
			return nil
		})
	}
	prodErr := g.Wait()
	produced := time.Since(start)

	stopCtx, cancel := context.WithTimeout(context.Background(), opts.drain)
	defer cancel()
	lost, stopErr := lc.Stop(stopCtx)
	drained := time.Since(start)
	admin := lc.RingBufferAdmin()
	stats := lc.Stats()

	total := opts.producers * opts.events
	fmt.Fprintf(out, "context           %s (%s)\n", lc.Name(), lc.Mode())
	fmt.Fprintf(out, "policy            %s\n", cfg.FullBufferPolicy)
	fmt.Fprintf(out, "wait strategy     %s\n", cfg.WaitStrategy)
	fmt.Fprintf(out, "capacity          %d\n", admin.Capacity)
	fmt.Fprintf(out, "remaining         %d\n", admin.RemainingCapacity)
	fmt.Fprintf(out, "buffered          %d\n", admin.BufferSize)
	fmt.Fprintf(out, "events            %d\n", total)
	fmt.Fprintf(out, "produce time      %s (%.0f events/s)\n", produced, float64(total)/produced.Seconds())
	fmt.Fprintf(out, "drain time        %s\n", drained)
	fmt.Fprintf(out, "processed         %d\n", stats.ProcessedTotal)
	fmt.Fprintf(out, "dropped           %d\n", stats.Dropped())
	fmt.Fprintf(out, "blocked           %d\n", stats.BlockedTotal)
	fmt.Fprintf(out, "synchronous       %d\n", stats.SyncTotal)
	fmt.Fprintf(out, "append errors     %d\n", stats.AppendErrors)
	fmt.Fprintf(out, "lost              %d\n", lost)

	if prodErr != nil {
		return prodErr
	}
	return stopErr
}
