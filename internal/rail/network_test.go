package rail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *Network {
	t.Helper()
	n := New()
	for _, s := range []string{"A", "B", "C"} {
		require.NoError(t, n.AddStation(s))
	}
	require.NoError(t, n.AddLine("E1", "A", "B", 30))
	require.NoError(t, n.AddLine("E2", "B", "C", 10))
	return n
}

func TestAddStationDuplicate(t *testing.T) {
	n := New()
	require.NoError(t, n.AddStation("A"))

	err := n.AddStation("A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	err = n.AddStation("  ")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAddLineRegistersReverse(t *testing.T) {
	n := triangle(t)

	fwd, err := n.Connection("E1")
	require.NoError(t, err)
	assert.Equal(t, "A", fwd.From)
	assert.Equal(t, "B", fwd.To)

	rev, err := n.Connection("E1 R")
	require.NoError(t, err)
	assert.Equal(t, "B", rev.From)
	assert.Equal(t, "A", rev.To)
	assert.Equal(t, 30, rev.Duration)

	nb, err := n.Neighbours("B")
	require.NoError(t, err)
	assert.Equal(t, []Neighbour{{Station: "A", Duration: 30}, {Station: "C", Duration: 10}}, nb)
}

func TestAddConnectionErrors(t *testing.T) {
	n := triangle(t)

	err := n.AddConnection("E1", "A", "C", 1)
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = n.AddConnection("E9", "A", "Z", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	err = n.AddConnection("E9", "A", "C", -1)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = n.Connection("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEdgeTo(t *testing.T) {
	n := triangle(t)

	c, err := n.EdgeTo("B", "A")
	require.NoError(t, err)
	assert.Equal(t, "E1 R", c.Name)

	_, err = n.EdgeTo("A", "C")
	assert.ErrorIs(t, err, ErrEdgeNotFound)

	t.Run("parallel connections pick the shortest", func(t *testing.T) {
		require.NoError(t, n.AddConnection("slow", "A", "C", 90))
		require.NoError(t, n.AddConnection("fast", "A", "C", 5))
		require.NoError(t, n.AddConnection("fast too", "A", "C", 5))
		c, err := n.EdgeTo("A", "C")
		require.NoError(t, err)
		assert.Equal(t, "fast", c.Name)
	})
}

func TestCriticalStations(t *testing.T) {
	n := triangle(t)
	require.NoError(t, n.AddStation("D"))

	for _, s := range n.Stations() {
		assert.False(t, s.Critical(), s.Name)
	}

	require.NoError(t, n.AddTrain("Q1", 6, "B"))
	require.NoError(t, n.AddPackage("K1", 5, "A", "C"))

	a, _ := n.Station("A")
	b, _ := n.Station("B")
	c, _ := n.Station("C")
	d, _ := n.Station("D")
	assert.True(t, a.Critical())
	assert.True(t, b.Critical())
	assert.True(t, c.Critical())
	assert.False(t, d.Critical())

	assert.Equal(t, []string{"K1"}, a.Pickups())
	assert.True(t, c.HasDropOff("K1"))
	assert.True(t, b.HasTrain("Q1"))

	// sticky once set
	require.True(t, a.RemovePickup("K1"))
	b.DepartTrain("Q1")
	assert.True(t, a.Critical())
	assert.True(t, b.Critical())
	assert.False(t, b.HasTrain("Q1"))
}

func TestAddTrainAndPackageErrors(t *testing.T) {
	n := triangle(t)

	assert.ErrorIs(t, n.AddTrain("Q1", 1, "Z"), ErrNotFound)
	require.NoError(t, n.AddTrain("Q1", 1, "A"))
	assert.ErrorIs(t, n.AddTrain("Q1", 1, "A"), ErrDuplicateName)
	assert.ErrorIs(t, n.AddTrain("Q2", -1, "A"), ErrInvalid)

	assert.ErrorIs(t, n.AddPackage("K1", 1, "A", "Z"), ErrNotFound)
	require.NoError(t, n.AddPackage("K1", 1, "A", "C"))
	assert.ErrorIs(t, n.AddPackage("K1", 1, "A", "C"), ErrDuplicateName)
	assert.ErrorIs(t, n.AddPackage("K2", -4, "A", "C"), ErrInvalid)

	spec, err := n.Train("Q1")
	require.NoError(t, err)
	assert.Equal(t, TrainSpec{Name: "Q1", Capacity: 1, Start: "A"}, spec)
}

func TestDelivery(t *testing.T) {
	n := triangle(t)
	require.NoError(t, n.AddPackage("K1", 1, "A", "C"))
	require.NoError(t, n.AddPackage("K2", 1, "B", "B"))

	k2, err := n.Package("K2")
	require.NoError(t, err)
	assert.True(t, k2.Delivered(), "a package already at its drop-off counts as delivered")

	assert.False(t, n.AllDelivered())
	assert.Equal(t, []string{"K1"}, n.Undelivered())

	k1, err := n.Package("K1")
	require.NoError(t, err)
	assert.True(t, k1.MarkDelivered())
	assert.False(t, k1.MarkDelivered())
	assert.True(t, k1.Delivered())
	assert.True(t, n.AllDelivered())
	assert.Empty(t, n.Undelivered())
}

func TestSortPathsIsStable(t *testing.T) {
	s := newStation("X")
	s.AttachPath(PathRecord{Distance: 20, Destination: "P"})
	s.AttachPath(PathRecord{Distance: 10, Destination: "Q"})
	s.AttachPath(PathRecord{Distance: 20, Destination: "R"})
	s.AttachPath(PathRecord{Distance: 10, Destination: "S"})
	s.SortPaths()

	var got []string
	for _, p := range s.Paths() {
		got = append(got, p.Destination)
	}
	assert.Equal(t, []string{"Q", "S", "P", "R"}, got)
}
