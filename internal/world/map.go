package world

import (
	"fmt"
	"slices"
)

// Map holds the complete hex grid state.
type Map struct {
	Hexes      map[HexCoord]*Hex `json:"-"` // All hexes keyed by coordinate
	Radius     int               `json:"radius"`
	Gatherings []Gathering       `json:"gatherings"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Hexes:  make(map[HexCoord]*Hex),
		Radius: radius,
	}
}

// Get returns the hex at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Hex {
	return m.Hexes[coord]
}

// Set places a hex at the given coordinate.
func (m *Map) Set(hex *Hex) {
	m.Hexes[hex.Coord] = hex
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(coord, HexCoord{}) <= m.Radius
}

// Passable reports whether the coordinate is on the map and can be stood on.
func (m *Map) Passable(coord HexCoord) bool {
	return m.Get(coord).Passable()
}

// Coords returns every coordinate on the map in q, r order.
func (m *Map) Coords() []HexCoord {
	out := make([]HexCoord, 0, len(m.Hexes))
	for c := range m.Hexes {
		out = append(out, c)
	}
	slices.SortFunc(out, compareCoords)
	return out
}

// Gathering returns the gathering place with the given ID.
func (m *Map) Gathering(id uint64) (Gathering, bool) {
	for _, g := range m.Gatherings {
		if g.ID == id {
			return g, true
		}
	}
	return Gathering{}, false
}

// NearestGathering returns the gathering place closest to coord. Ties go to
// the lower ID.
func (m *Map) NearestGathering(coord HexCoord) (Gathering, bool) {
	var best Gathering
	bestDist := -1
	for _, g := range m.Gatherings {
		d := Distance(coord, g.Coord)
		if bestDist < 0 || d < bestDist || (d == bestDist && g.ID < best.ID) {
			best, bestDist = g, d
		}
	}
	return best, bestDist >= 0
}

// HexCount returns the total number of hexes in the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d, gatherings=%d)", m.Radius, m.HexCount(), len(m.Gatherings))
}

func compareCoords(a, b HexCoord) int {
	if a.Q != b.Q {
		return a.Q - b.Q
	}
	return a.R - b.R
}
