package rail

import "sort"

// Connection is a directed, timed edge between two stations.
type Connection struct {
	Name     string
	From     string
	To       string
	Duration int
}

// Package is a parcel waiting at, or travelling from, its pickup station
// towards its drop-off station.
type Package struct {
	Name   string
	Weight int
	From   string // pickup station
	To     string // drop-off station

	delivered bool
}

// Delivered reports whether the package has reached its drop-off station.
func (p *Package) Delivered() bool { return p.delivered }

// MarkDelivered flips the delivered flag. It returns false if the package
// was already delivered; the flag never goes back.
func (p *Package) MarkDelivered() bool {
	if p.delivered {
		return false
	}
	p.delivered = true
	return true
}

// TrainSpec describes a train as registered in the network.
type TrainSpec struct {
	Name     string
	Capacity int
	Start    string
}

// Neighbour is one outgoing hop from a station.
type Neighbour struct {
	Station  string
	Duration int
}

// PathRecord ties a critical station to the source of one shortest-path
// search. Prev maps every station reached by that search to its
// predecessor on the way from Destination, so a train standing at X walks
// towards Destination by following Prev[X].
type PathRecord struct {
	Distance    int
	Destination string
	Prev        map[string]string
}

// Station is a node of the network.
type Station struct {
	Name string

	connections []*Connection
	pickups     []string
	dropOffs    map[string]struct{}
	trains      map[string]struct{}
	critical    bool
	paths       []PathRecord
}

func newStation(name string) *Station {
	return &Station{
		Name:     name,
		dropOffs: make(map[string]struct{}),
		trains:   make(map[string]struct{}),
	}
}

// Critical reports whether the station ever hosted a pickup, a drop-off or
// a train's starting position.
func (s *Station) Critical() bool { return s.critical }

// Connections returns the outgoing connections in registration order.
func (s *Station) Connections() []*Connection { return s.connections }

// Pickups returns the names of packages currently lying at the station,
// delivered ones included.
func (s *Station) Pickups() []string { return s.pickups }

// AddPickup puts a package into the station's pool.
func (s *Station) AddPickup(name string) {
	s.pickups = append(s.pickups, name)
	s.critical = true
}

// RemovePickup takes a package out of the station's pool.
func (s *Station) RemovePickup(name string) bool {
	for i, p := range s.pickups {
		if p == name {
			s.pickups = append(s.pickups[:i], s.pickups[i+1:]...)
			return true
		}
	}
	return false
}

// HasDropOff reports whether the named package is bound for this station.
func (s *Station) HasDropOff(pkg string) bool {
	_, ok := s.dropOffs[pkg]
	return ok
}

// ParkTrain records that a train stands at the station.
func (s *Station) ParkTrain(name string) { s.trains[name] = struct{}{} }

// DepartTrain records that a train left the station.
func (s *Station) DepartTrain(name string) { delete(s.trains, name) }

// HasTrain reports whether the named train stands at the station.
func (s *Station) HasTrain(name string) bool {
	_, ok := s.trains[name]
	return ok
}

// Paths returns the ranked path records, nearest first.
func (s *Station) Paths() []PathRecord { return s.paths }

// AttachPath appends a path record. Call SortPaths once all are attached.
func (s *Station) AttachPath(rec PathRecord) { s.paths = append(s.paths, rec) }

// SortPaths orders path records by distance, keeping attach order on ties.
func (s *Station) SortPaths() {
	sort.SliceStable(s.paths, func(i, j int) bool {
		return s.paths[i].Distance < s.paths[j].Distance
	})
}
