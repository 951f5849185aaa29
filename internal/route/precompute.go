package route

import (
	"fmt"

	"freight-simulator/internal/rail"
)

// Stats summarises one precomputation.
type Stats struct {
	Runs    int // distinct sources searched
	Records int // path records attached
}

// Precompute searches from the drop-off and then the pickup station of
// every package, in registration order, and attaches to every critical
// station reached (other than the source) a record of its distance from
// that source together with the search's predecessor map. Each station is
// searched once however many packages share it. Afterwards every station's
// records are ranked by distance, attach order kept on ties.
func Precompute(n *rail.Network) (Stats, error) {
	var st Stats
	seen := make(map[string]bool)
	for _, p := range n.Packages() {
		for _, source := range []string{p.To, p.From} {
			if seen[source] {
				continue
			}
			seen[source] = true
			tree, err := ShortestPaths(n, source)
			if err != nil {
				return st, fmt.Errorf("package %q: %w", p.Name, err)
			}
			st.Runs++
			st.Records += attach(n, tree)
		}
	}
	for _, s := range n.Stations() {
		s.SortPaths()
	}
	return st, nil
}

func attach(n *rail.Network, tree *Tree) int {
	count := 0
	for _, s := range n.Stations() {
		if s.Name == tree.Source || !s.Critical() {
			continue
		}
		d, ok := tree.Dist[s.Name]
		if !ok {
			continue
		}
		s.AttachPath(rail.PathRecord{
			Distance:    d,
			Destination: tree.Source,
			Prev:        tree.Prev,
		})
		count++
	}
	return count
}
