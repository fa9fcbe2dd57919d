// Package world provides the hex grid the village sits on: terrain, gathering
// places and the spatial index used to find who is within earshot.
// Uses axial coordinates (q, r) for the hex grid.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) String() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains Terrain = iota // Open ground, fields
	TerrainForest                // Woods at the village edge
	TerrainHills                 // Rough ground, slow going
	TerrainWater                 // Ponds and the millrace; nobody stands here
)

// Hex represents a single tile on the map.
type Hex struct {
	Coord     HexCoord `json:"coord"`
	Terrain   Terrain  `json:"terrain"`
	Elevation float64  `json:"elevation"` // 0.0 (low) to 1.0 (peak)

	// Footfall: how naturally people drift here, 0.0–1.0.
	Footfall float64 `json:"footfall"`

	// Gathering place on this hex, if any.
	GatheringID *uint64 `json:"gathering_id,omitempty"`
}

// Passable reports whether agents can stand on the hex.
func (h *Hex) Passable() bool {
	return h != nil && h.Terrain != TerrainWater
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Within returns every coordinate at most radius steps from h, ordered by q
// then r. Radius below zero yields nothing.
func (h HexCoord) Within(radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	out := make([]HexCoord, 0, 3*radius*(radius+1)+1)
	for dq := -radius; dq <= radius; dq++ {
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		for dr := lo; dr <= hi; dr++ {
			out = append(out, HexCoord{Q: h.Q + dq, R: h.R + dr})
		}
	}
	return out
}

// StepToward returns the neighbor of from that is closest to to. Returns from
// when already there.
func StepToward(from, to HexCoord) HexCoord {
	if from == to {
		return from
	}
	best := from
	bestDist := Distance(from, to)
	for _, n := range from.Neighbors() {
		if d := Distance(n, to); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
