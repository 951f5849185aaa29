package sim

import (
	"fmt"
	"log/slog"

	"freight-simulator/internal/rail"
)

// location is where a train is: parked at a station, travelling a
// connection, or stopped for good.
type location interface{ isLocation() }

type atStation struct{ station string }

type onConnection struct {
	conn    *rail.Connection
	elapsed int
}

type stopped struct{ station string }

func (atStation) isLocation()     {}
func (*onConnection) isLocation() {}
func (stopped) isLocation()       {}

// Outcome reports what one tick did to a train.
type Outcome struct {
	Arrived   string   // station reached this tick, if any
	Delivered []string // packages unloaded at their drop-off
	Loaded    []string
	Departed  *rail.Connection
	Stopped   bool
}

// Train carries packages between critical stations, choosing its next
// target every time it stands at one.
type Train struct {
	name     string
	capacity int
	load     int
	carried  []string

	loc    location
	route  map[string]string
	target string

	history []Record

	net    *rail.Network
	logger *slog.Logger
}

// NewTrain places a train at its start station.
func NewTrain(n *rail.Network, spec rail.TrainSpec, logger *slog.Logger) *Train {
	if logger == nil {
		logger = slog.Default()
	}
	return &Train{
		name:     spec.Name,
		capacity: spec.Capacity,
		loc:      atStation{station: spec.Start},
		net:      n,
		logger:   logger.With("train", spec.Name),
	}
}

func (t *Train) Name() string      { return t.name }
func (t *Train) Capacity() int     { return t.capacity }
func (t *Train) Load() int         { return t.load }
func (t *Train) Target() string    { return t.target }
func (t *Train) History() []Record { return t.history }

// Carrying returns the names of carried packages in load order.
func (t *Train) Carrying() []string { return append([]string(nil), t.carried...) }

// Stopped reports whether the train has no reachable work left.
func (t *Train) Stopped() bool {
	_, ok := t.loc.(stopped)
	return ok
}

// Location describes the train's position for logs and tests.
func (t *Train) Location() string {
	switch loc := t.loc.(type) {
	case atStation:
		return loc.station
	case *onConnection:
		return fmt.Sprintf("%s (%d/%d)", loc.conn.Name, loc.elapsed, loc.conn.Duration)
	case stopped:
		return loc.station + " (stopped)"
	}
	return ""
}

// Tick advances the train by one unit of time. A train finishing a
// connection arrives and handles the station within the same tick.
func (t *Train) Tick(now int) (Outcome, error) {
	var out Outcome
	for {
		switch loc := t.loc.(type) {
		case stopped:
			return out, nil
		case *onConnection:
			if loc.elapsed < loc.conn.Duration {
				loc.elapsed++
				return out, nil
			}
			if err := t.arrive(loc.conn); err != nil {
				return out, err
			}
			out.Arrived = loc.conn.To
		case atStation:
			err := t.visit(now, loc.station, &out)
			return out, err
		default:
			return out, fmt.Errorf("train %q: unknown location %T", t.name, loc)
		}
	}
}

func (t *Train) arrive(conn *rail.Connection) error {
	st, err := t.net.Station(conn.To)
	if err != nil {
		return err
	}
	st.ParkTrain(t.name)
	t.loc = atStation{station: conn.To}
	t.logger.Debug("train arrived", "station", conn.To, "via", conn.Name)
	return nil
}

// visit unloads, loads, retargets at critical stations and sets off
// towards the next hop, or stops when no hop is left.
func (t *Train) visit(now int, name string, out *Outcome) error {
	st, err := t.net.Station(name)
	if err != nil {
		return err
	}
	t.history = append(t.history, Record{Time: now, Train: t.name, Departure: name})
	cur := len(t.history) - 1

	unloaded, err := t.unload(st)
	if err != nil {
		return err
	}
	if cur > 0 {
		t.history[cur-1].Arrival = name
		t.history[cur-1].Unloaded = unloaded
	}
	out.Delivered = unloaded

	loaded, err := t.loadAll(st)
	if err != nil {
		return err
	}
	t.history[cur].Loaded = loaded
	out.Loaded = loaded

	if st.Critical() {
		if err := t.findNewTarget(st); err != nil {
			return err
		}
	}

	next, ok := t.route[name]
	if !ok {
		// a leg with no destination carries nothing worth keeping
		t.history = t.history[:cur]
		t.loc = stopped{station: name}
		out.Stopped = true
		t.logger.Debug("train stopped", "station", name, "time", now, "carrying", len(t.carried))
		return nil
	}
	conn, err := t.net.EdgeTo(name, next)
	if err != nil {
		return fmt.Errorf("train %q: %w", t.name, err)
	}
	st.DepartTrain(t.name)
	// the departure tick is the first unit spent on the connection
	t.loc = &onConnection{conn: conn, elapsed: 1}
	out.Departed = conn
	t.logger.Debug("train departed", "station", name, "via", conn.Name, "next", next, "target", t.target, "time", now)
	return nil
}

func (t *Train) unload(st *rail.Station) ([]string, error) {
	var unloaded []string
	kept := make([]string, 0, len(t.carried))
	for _, name := range t.carried {
		p, err := t.net.Package(name)
		if err != nil {
			return nil, err
		}
		if p.To != st.Name {
			kept = append(kept, name)
			continue
		}
		t.load -= p.Weight
		st.AddPickup(name)
		p.MarkDelivered()
		unloaded = append(unloaded, name)
	}
	t.carried = kept
	return unloaded, nil
}

func (t *Train) loadAll(st *rail.Station) ([]string, error) {
	var loaded []string
	waiting := append([]string(nil), st.Pickups()...)
	for _, name := range waiting {
		p, err := t.net.Package(name)
		if err != nil {
			return nil, err
		}
		if p.Delivered() || t.load+p.Weight > t.capacity {
			continue
		}
		st.RemovePickup(name)
		t.carried = append(t.carried, name)
		t.load += p.Weight
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// findNewTarget adopts the route of the nearest critical station where
// the train can drop off something it carries or pick up something that
// fits. With no such station the route is cleared.
func (t *Train) findNewTarget(st *rail.Station) error {
	t.route = nil
	t.target = ""
	for _, rec := range st.Paths() {
		dest, err := t.net.Station(rec.Destination)
		if err != nil {
			return err
		}
		useful, err := t.usefulAt(dest)
		if err != nil {
			return err
		}
		if useful {
			t.route = rec.Prev
			t.target = rec.Destination
			t.logger.Debug("train retargeted", "station", st.Name, "target", rec.Destination, "distance", rec.Distance)
			return nil
		}
	}
	return nil
}

func (t *Train) usefulAt(dest *rail.Station) (bool, error) {
	for _, name := range t.carried {
		if dest.HasDropOff(name) {
			return true, nil
		}
	}
	for _, name := range dest.Pickups() {
		p, err := t.net.Package(name)
		if err != nil {
			return false, err
		}
		if !p.Delivered() && t.load+p.Weight <= t.capacity {
			return true, nil
		}
	}
	return false, nil
}
