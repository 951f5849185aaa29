// Package sim runs trains over a precomputed rail network one tick at a
// time until every package has been delivered.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"freight-simulator/internal/rail"
)

var (
	// ErrUnreachableDelivery means every train has stopped while packages
	// are still undelivered.
	ErrUnreachableDelivery = errors.New("unreachable delivery")
	// ErrTickLimit means the configured tick ceiling was hit first.
	ErrTickLimit = errors.New("tick limit reached")
)

// Metrics receives simulation progress. All methods must be cheap.
type Metrics interface {
	TickObserve(d time.Duration)
	DeliveredAdd(n int)
	TrainStoppedInc()
	SetActiveTrains(n int)
	SetPendingPackages(n int)
}

type Options struct {
	MaxTicks int // 0 means no ceiling
	Logger   *slog.Logger
	Metrics  Metrics
}

// Result is the outcome of a successful run.
type Result struct {
	Records   []Record // sorted by time
	Ticks     int
	Delivered int // packages unloaded at their drop-off during the run
}

// Simulation drives every train of a network on one shared clock.
type Simulation struct {
	net       *rail.Network
	trains    []*Train
	clock     int
	delivered int
	maxTicks  int
	logger    *slog.Logger
	metrics   Metrics
}

// New builds a simulation over n. Path records must already be attached
// (see route.Precompute).
func New(n *rail.Network, opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulation{
		net:      n,
		maxTicks: opts.MaxTicks,
		logger:   logger,
		metrics:  opts.Metrics,
	}
	for _, spec := range n.Trains() {
		s.trains = append(s.trains, NewTrain(n, spec, logger))
	}
	return s
}

// Trains returns the simulated trains in registration order.
func (s *Simulation) Trains() []*Train { return s.trains }

// Clock returns the number of ticks run so far.
func (s *Simulation) Clock() int { return s.clock }

// Step ticks every running train once and advances the clock. It returns
// ErrUnreachableDelivery when no train is left running.
func (s *Simulation) Step() error {
	start := time.Now()
	active := 0
	for _, t := range s.trains {
		if t.Stopped() {
			continue
		}
		active++
		out, err := t.Tick(s.clock)
		if err != nil {
			return fmt.Errorf("at t=%d: %w", s.clock, err)
		}
		if len(out.Delivered) > 0 {
			s.delivered += len(out.Delivered)
			s.logger.Info("packages delivered", "train", t.Name(), "station", out.Arrived, "packages", out.Delivered, "time", s.clock)
			if s.metrics != nil {
				s.metrics.DeliveredAdd(len(out.Delivered))
			}
		}
		if out.Stopped && s.metrics != nil {
			s.metrics.TrainStoppedInc()
		}
	}
	if active == 0 {
		pending := s.net.Undelivered()
		return fmt.Errorf("%w: at t=%d no train can move, undelivered: %s",
			ErrUnreachableDelivery, s.clock, strings.Join(pending, ", "))
	}
	s.clock++
	if s.metrics != nil {
		s.metrics.TickObserve(time.Since(start))
		s.metrics.SetActiveTrains(s.running())
		s.metrics.SetPendingPackages(len(s.net.Undelivered()))
	}
	return nil
}

// Run steps until every package is delivered and returns the merged
// movement records of all trains.
func (s *Simulation) Run() (*Result, error) {
	s.logger.Info("simulation starting", "trains", len(s.trains), "packages", len(s.net.Packages()))
	if s.metrics != nil {
		s.metrics.SetActiveTrains(s.running())
		s.metrics.SetPendingPackages(len(s.net.Undelivered()))
	}
	for !s.net.AllDelivered() {
		if s.maxTicks > 0 && s.clock >= s.maxTicks {
			return nil, fmt.Errorf("%w: %d ticks, undelivered: %s",
				ErrTickLimit, s.maxTicks, strings.Join(s.net.Undelivered(), ", "))
		}
		if err := s.Step(); err != nil {
			return nil, err
		}
	}

	var records []Record
	for _, t := range s.trains {
		records = append(records, t.History()...)
	}
	SortRecords(records)

	res := &Result{
		Records:   records,
		Ticks:     s.clock,
		Delivered: s.delivered,
	}
	s.logger.Info("simulation finished", "ticks", res.Ticks, "records", len(records), "delivered", res.Delivered)
	return res, nil
}

func (s *Simulation) running() int {
	n := 0
	for _, t := range s.trains {
		if !t.Stopped() {
			n++
		}
	}
	return n
}
