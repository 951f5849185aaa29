// Package rail holds the rail network: stations, the timed connections
// between them, the packages lying at or bound for each station, and where
// each train starts. All cross references are by name.
package rail

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrInvalid       = errors.New("invalid value")
)

// ReverseSuffix is appended to a line's name to form its return connection.
const ReverseSuffix = " R"

type Network struct {
	stations     map[string]*Station
	stationOrder []*Station

	connections map[string]*Connection

	packages     map[string]*Package
	packageOrder []*Package

	trains     map[string]TrainSpec
	trainOrder []string
}

func New() *Network {
	return &Network{
		stations:    make(map[string]*Station),
		connections: make(map[string]*Connection),
		packages:    make(map[string]*Package),
		trains:      make(map[string]TrainSpec),
	}
}

func (n *Network) AddStation(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty station name", ErrInvalid)
	}
	if _, exists := n.stations[name]; exists {
		return fmt.Errorf("%w: station %q", ErrDuplicateName, name)
	}
	s := newStation(name)
	n.stations[name] = s
	n.stationOrder = append(n.stationOrder, s)
	return nil
}

// AddConnection registers a directed connection; the source station gains
// it as an outgoing edge.
func (n *Network) AddConnection(name, from, to string, duration int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty connection name", ErrInvalid)
	}
	if duration < 0 {
		return fmt.Errorf("%w: connection %q has negative duration %d", ErrInvalid, name, duration)
	}
	if _, exists := n.connections[name]; exists {
		return fmt.Errorf("%w: connection %q", ErrDuplicateName, name)
	}
	src, err := n.Station(from)
	if err != nil {
		return fmt.Errorf("connection %q: %w", name, err)
	}
	if _, err := n.Station(to); err != nil {
		return fmt.Errorf("connection %q: %w", name, err)
	}
	c := &Connection{Name: name, From: from, To: to, Duration: duration}
	n.connections[name] = c
	src.connections = append(src.connections, c)
	return nil
}

// AddLine registers an undirected line as two connections: name from a to
// b, and name+ReverseSuffix from b to a, sharing the duration.
func (n *Network) AddLine(name, a, b string, duration int) error {
	if err := n.AddConnection(name, a, b, duration); err != nil {
		return err
	}
	return n.AddConnection(name+ReverseSuffix, b, a, duration)
}

// AddTrain registers a train standing at its start station, which becomes
// critical.
func (n *Network) AddTrain(name string, capacity int, start string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty train name", ErrInvalid)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: train %q has negative capacity %d", ErrInvalid, name, capacity)
	}
	if _, exists := n.trains[name]; exists {
		return fmt.Errorf("%w: train %q", ErrDuplicateName, name)
	}
	s, err := n.Station(start)
	if err != nil {
		return fmt.Errorf("train %q: %w", name, err)
	}
	n.trains[name] = TrainSpec{Name: name, Capacity: capacity, Start: start}
	n.trainOrder = append(n.trainOrder, name)
	s.ParkTrain(name)
	s.critical = true
	return nil
}

// AddPackage registers a package lying at its pickup station. Both the
// pickup and the drop-off station become critical.
func (n *Network) AddPackage(name string, weight int, from, to string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty package name", ErrInvalid)
	}
	if weight < 0 {
		return fmt.Errorf("%w: package %q has negative weight %d", ErrInvalid, name, weight)
	}
	if _, exists := n.packages[name]; exists {
		return fmt.Errorf("%w: package %q", ErrDuplicateName, name)
	}
	src, err := n.Station(from)
	if err != nil {
		return fmt.Errorf("package %q: %w", name, err)
	}
	dst, err := n.Station(to)
	if err != nil {
		return fmt.Errorf("package %q: %w", name, err)
	}
	p := &Package{Name: name, Weight: weight, From: from, To: to}
	// already where it needs to be
	if from == to {
		p.delivered = true
	}
	n.packages[name] = p
	n.packageOrder = append(n.packageOrder, p)
	src.AddPickup(name)
	dst.dropOffs[name] = struct{}{}
	dst.critical = true
	return nil
}

func (n *Network) Station(name string) (*Station, error) {
	s, ok := n.stations[name]
	if !ok {
		return nil, fmt.Errorf("%w: station %q", ErrNotFound, name)
	}
	return s, nil
}

func (n *Network) Connection(name string) (*Connection, error) {
	c, ok := n.connections[name]
	if !ok {
		return nil, fmt.Errorf("%w: connection %q", ErrNotFound, name)
	}
	return c, nil
}

func (n *Network) Package(name string) (*Package, error) {
	p, ok := n.packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: package %q", ErrNotFound, name)
	}
	return p, nil
}

func (n *Network) Train(name string) (TrainSpec, error) {
	t, ok := n.trains[name]
	if !ok {
		return TrainSpec{}, fmt.Errorf("%w: train %q", ErrNotFound, name)
	}
	return t, nil
}

// Stations returns all stations in registration order.
func (n *Network) Stations() []*Station { return n.stationOrder }

// Packages returns all packages in registration order.
func (n *Network) Packages() []*Package { return n.packageOrder }

// Trains returns all train descriptors in registration order.
func (n *Network) Trains() []TrainSpec {
	out := make([]TrainSpec, 0, len(n.trainOrder))
	for _, name := range n.trainOrder {
		out = append(out, n.trains[name])
	}
	return out
}

// Neighbours lists the stations reachable in one hop from name.
func (n *Network) Neighbours(name string) ([]Neighbour, error) {
	s, err := n.Station(name)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbour, 0, len(s.connections))
	for _, c := range s.connections {
		out = append(out, Neighbour{Station: c.To, Duration: c.Duration})
	}
	return out, nil
}

// EdgeTo returns the connection leading from one station straight to
// another. With parallel connections the shortest wins, the first
// registered on ties.
func (n *Network) EdgeTo(from, to string) (*Connection, error) {
	s, err := n.Station(from)
	if err != nil {
		return nil, err
	}
	var best *Connection
	for _, c := range s.connections {
		if c.To != to {
			continue
		}
		if best == nil || c.Duration < best.Duration {
			best = c
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %q -> %q", ErrEdgeNotFound, from, to)
	}
	return best, nil
}

// AllDelivered reports whether every package reached its drop-off station.
func (n *Network) AllDelivered() bool {
	for _, p := range n.packageOrder {
		if !p.Delivered() {
			return false
		}
	}
	return true
}

// Undelivered returns the names of packages still in transit or waiting.
func (n *Network) Undelivered() []string {
	var out []string
	for _, p := range n.packageOrder {
		if !p.Delivered() {
			out = append(out, p.Name)
		}
	}
	return out
}
