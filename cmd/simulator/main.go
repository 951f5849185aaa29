package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"freight-simulator/internal/config"
	"freight-simulator/internal/db"
	"freight-simulator/internal/metrics"
	"freight-simulator/internal/publisher"
	"freight-simulator/internal/route"
	"freight-simulator/internal/scenario"
	"freight-simulator/internal/sim"
)

func main() {
	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
	cancel()
}

// run loads a scenario, simulates it and prints the movement records to
// outW. Logs go to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	runID := uuid.New().String()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	slog.SetDefault(logger)

	// Metrics setup
	var mcol *metrics.Collector
	var simMetrics sim.Metrics
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.MaxTicks)
		simMetrics = mcol
		srv := mcol.Serve(cfg.MetricsAddr, cfg.MetricsOrigins, logger)
		defer shutdown(srv, logger)
	}

	// Connect before simulating so a bad NATS_URL fails fast
	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol), logger)
		if err != nil {
			return fmt.Errorf("nats error: %w", err)
		}
		defer pub.Close()
	}

	sc, err := loadScenario(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger = logger.With("scenario", sc.Name)

	res, runErr := simulate(sc, cfg, logger, mcol, simMetrics)
	if mcol != nil {
		mcol.RunFinished(outcome(runErr))
	}
	if runErr == nil {
		for _, r := range res.Records {
			fmt.Fprintln(outW, r.String())
		}
		if pub != nil {
			if err := publishResult(pub, runID, sc.Name, res); err != nil {
				runErr = err
			}
		}
	}

	if cfg.ServeAfterRun {
		logger.Info("serving metrics until interrupted", "addr", cfg.MetricsAddr)
		<-ctx.Done()
	}
	return runErr
}

func simulate(sc *scenario.Scenario, cfg *config.Config, logger *slog.Logger, mcol *metrics.Collector, m sim.Metrics) (*sim.Result, error) {
	network, err := scenario.Build(sc)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}

	start := time.Now()
	stats, err := route.Precompute(network)
	if err != nil {
		return nil, fmt.Errorf("precompute routes: %w", err)
	}
	elapsed := time.Since(start)
	if mcol != nil {
		mcol.PrecomputeObserve(stats.Runs, stats.Records, elapsed)
	}
	logger.Info("routes precomputed", "runs", stats.Runs, "records", stats.Records, "took", elapsed)

	s := sim.New(network, sim.Options{
		MaxTicks: cfg.MaxTicks,
		Logger:   logger,
		Metrics:  m,
	})
	return s.Run()
}

// loadScenario reads the scenario file when one is configured, else the
// named (or latest) scenario from Postgres.
func loadScenario(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scenario.Scenario, error) {
	if cfg.ScenarioFile != "" {
		sc, err := scenario.LoadHCL(cfg.ScenarioFile)
		if err != nil {
			return nil, err
		}
		logger.Info("scenario loaded", "file", cfg.ScenarioFile, "name", sc.Name)
		return sc, nil
	}

	dsn := cfg.DatabaseURL
	if cfg.ScenarioDB != "" {
		var err error
		dsn, err = db.WithDBName(dsn, cfg.ScenarioDB)
		if err != nil {
			return nil, fmt.Errorf("compose DSN: %w", err)
		}
	}
	sqlDB, err := db.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	defer sqlDB.Close()
	if err := db.Ping(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	name := cfg.ScenarioName
	if name == "" {
		name, err = db.ResolveLatestScenario(ctx, sqlDB, "")
		if err != nil {
			return nil, fmt.Errorf("resolve latest scenario: %w", err)
		}
		logger.Info("using latest scenario", "name", name)
	}
	sc, err := db.LoadScenario(ctx, sqlDB, name)
	if err != nil {
		return nil, fmt.Errorf("load scenario %q: %w", name, err)
	}
	logger.Info("scenario loaded", "source", "postgres", "name", name)
	return sc, nil
}

func publishResult(pub *publisher.NATSPublisher, runID, name string, res *sim.Result) error {
	if err := pub.PublishRecords(runID, res.Records); err != nil {
		return err
	}
	return pub.PublishSummary(publisher.Summary{
		RunID:     runID,
		Scenario:  name,
		Ticks:     res.Ticks,
		Delivered: res.Delivered,
		Records:   len(res.Records),
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sim.ErrUnreachableDelivery):
		return "unreachable"
	case errors.Is(err, sim.ErrTickLimit):
		return "tick_limit"
	default:
		return "error"
	}
}

func shutdown(srv *http.Server, logger *slog.Logger) {
	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
