package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"freight-simulator/internal/sim"
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

type NATSPublisher struct {
	nc          conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
	logger      *slog.Logger
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats")
	nc, err := nats.Connect(url,
		nats.Name("freight-simulator"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return newPublisher(nc, prefix, logSubjects, m, logger), nil
}

func newPublisher(nc conn, prefix string, logSubjects bool, m PublisherMetrics, logger *slog.Logger) *NATSPublisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "freight"
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m, logger: logger}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// RecordMessage is the payload published for every movement record.
type RecordMessage struct {
	RunID string `json:"runId"`
	sim.Record
}

// Summary closes a run.
type Summary struct {
	RunID     string `json:"runId"`
	Scenario  string `json:"scenario"`
	Ticks     int    `json:"ticks"`
	Delivered int    `json:"delivered"`
	Records   int    `json:"records"`
}

// PublishRecord sends r on <prefix>.<runID>.<train>.
func (p *NATSPublisher) PublishRecord(runID string, r sim.Record) error {
	subject := fmt.Sprintf("%s.%s.%s", p.prefix, subjectToken(runID), subjectToken(r.Train))
	return p.publish(subject, RecordMessage{RunID: runID, Record: r})
}

// PublishRecords publishes in order and stops at the first failure.
func (p *NATSPublisher) PublishRecords(runID string, records []sim.Record) error {
	for _, r := range records {
		if err := p.PublishRecord(runID, r); err != nil {
			return fmt.Errorf("publish record t=%d train=%s: %w", r.Time, r.Train, err)
		}
	}
	return nil
}

// PublishSummary sends s on <prefix>.<runID>.summary.
func (p *NATSPublisher) PublishSummary(s Summary) error {
	subject := fmt.Sprintf("%s.%s.summary", p.prefix, subjectToken(s.RunID))
	return p.publish(subject, s)
}

func (p *NATSPublisher) publish(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if p.logSubjects {
		p.logger.Debug("nats publish", "subject", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
