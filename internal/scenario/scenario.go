// Package scenario is the format-agnostic description of a simulation
// input and the code that turns it into a rail network.
package scenario

import (
	"fmt"

	"freight-simulator/internal/rail"
)

// Scenario lists everything the simulation starts from. Order matters:
// it is the registration order of the network.
type Scenario struct {
	Name     string
	Stations []string
	Lines    []Line
	Trains   []Train
	Packages []Package
}

// Line is an undirected track; it becomes two directed connections.
type Line struct {
	Name     string
	From     string
	To       string
	Duration int
}

type Train struct {
	Name     string
	Capacity int
	Start    string
}

type Package struct {
	Name   string
	Weight int
	From   string
	To     string
}

// Build registers stations, lines, trains and packages, in that order,
// and stops at the first invalid entry.
func Build(s *Scenario) (*rail.Network, error) {
	n := rail.New()
	for _, name := range s.Stations {
		if err := n.AddStation(name); err != nil {
			return nil, err
		}
	}
	for _, l := range s.Lines {
		if err := n.AddLine(l.Name, l.From, l.To, l.Duration); err != nil {
			return nil, fmt.Errorf("line %q: %w", l.Name, err)
		}
	}
	for _, t := range s.Trains {
		if err := n.AddTrain(t.Name, t.Capacity, t.Start); err != nil {
			return nil, err
		}
	}
	for _, p := range s.Packages {
		if err := n.AddPackage(p.Name, p.Weight, p.From, p.To); err != nil {
			return nil, err
		}
	}
	return n, nil
}
