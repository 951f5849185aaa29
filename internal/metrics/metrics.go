package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ActiveTrains    prometheus.Gauge
	PendingPackages prometheus.Gauge

	Ticks             prometheus.Counter
	PackagesDelivered prometheus.Counter
	TrainsStopped     prometheus.Counter

	PrecomputeRuns     prometheus.Counter
	PrecomputeRecords  prometheus.Counter
	PrecomputeDuration prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	Runs *prometheus.CounterVec // outcome label: ok|unreachable|tick_limit|error

	TickDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram

	MaxTicks prometheus.Gauge
}

func NewCollector(maxTicks int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveTrains: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_active_trains",
			Help: "Number of trains that have not stopped.",
		}),
		PendingPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_pending_packages",
			Help: "Number of packages not yet delivered.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_ticks_total",
			Help: "Total simulation ticks run.",
		}),
		PackagesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_packages_delivered_total",
			Help: "Total packages delivered.",
		}),
		TrainsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_trains_stopped_total",
			Help: "Total trains that stopped for lack of work.",
		}),
		PrecomputeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_precompute_runs_total",
			Help: "Shortest-path searches run during precomputation.",
		}),
		PrecomputeRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_precompute_records_total",
			Help: "Path records attached to critical stations.",
		}),
		PrecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_precompute_duration_seconds",
			Help:    "Duration of shortest-path precomputation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulator_runs_total",
			Help: "Simulation runs by outcome.",
		}, []string{"outcome"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_tick_duration_seconds",
			Help:    "Duration of simulation tick computations.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		MaxTicks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_max_ticks",
			Help: "Configured tick ceiling, 0 if unlimited.",
		}),
	}

	reg.MustRegister(
		c.ActiveTrains, c.PendingPackages,
		c.Ticks, c.PackagesDelivered, c.TrainsStopped,
		c.PrecomputeRuns, c.PrecomputeRecords, c.PrecomputeDuration,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.Runs, c.TickDuration, c.PublishDuration, c.MaxTicks,
	)

	c.MaxTicks.Set(float64(maxTicks))

	return c
}

// The methods below satisfy sim.Metrics.

func (c *Collector) TickObserve(d time.Duration) {
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
}

func (c *Collector) DeliveredAdd(n int)       { c.PackagesDelivered.Add(float64(n)) }
func (c *Collector) TrainStoppedInc()         { c.TrainsStopped.Inc() }
func (c *Collector) SetActiveTrains(n int)    { c.ActiveTrains.Set(float64(n)) }
func (c *Collector) SetPendingPackages(n int) { c.PendingPackages.Set(float64(n)) }

// PrecomputeObserve records one precomputation pass.
func (c *Collector) PrecomputeObserve(runs, records int, d time.Duration) {
	c.PrecomputeRuns.Add(float64(runs))
	c.PrecomputeRecords.Add(float64(records))
	c.PrecomputeDuration.Observe(d.Seconds())
}

func (c *Collector) RunFinished(outcome string) { c.Runs.WithLabelValues(outcome).Inc() }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Router exposes /metrics and /healthz. Browsers from origins may read
// both; an empty list allows any origin.
func (c *Collector) Router(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Method(http.MethodGet, "/metrics", c.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve starts an HTTP server for Router on the given address.
func (c *Collector) Serve(addr string, origins []string, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{Addr: addr, Handler: c.Router(origins), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return srv
}
