// Gathering places: the squares, wells and taverns where villagers drift to
// talk. Placement scores hexes by footfall and spreads the best ones apart.
package world

import (
	"math/rand"
	"sort"
)

// GatheringKind categorizes a gathering place.
type GatheringKind uint8

const (
	GatheringSquare GatheringKind = iota
	GatheringTavern
	GatheringWell
	GatheringMarket
	GatheringShrine
)

var gatheringKindNames = [...]string{"square", "tavern", "well", "market", "shrine"}

func (k GatheringKind) String() string {
	if int(k) < len(gatheringKindNames) {
		return gatheringKindNames[k]
	}
	return "unknown"
}

// Gathering is a named spot where agents come together.
type Gathering struct {
	ID    uint64        `json:"id"`
	Name  string        `json:"name"`
	Kind  GatheringKind `json:"kind"`
	Coord HexCoord      `json:"coord"`
	Score float64       `json:"score"` // Desirability at placement time
}

// minGatheringDist keeps gathering places from clumping on neighboring hexes.
const minGatheringDist = 3

// PlaceGatherings picks up to count gathering places on m, best score first,
// and records them on the map. The first place is always the square.
func PlaceGatherings(m *Map, seed int64, count int) []Gathering {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var candidates []scored
	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if !hex.Passable() {
			continue
		}
		if s := gatheringScore(m, coord, hex); s > 0 {
			candidates = append(candidates, scored{coord, s})
		}
	}

	// Sort by score descending; coordinate order breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	names := generateNames(rng, count)
	var placed []Gathering
	for _, c := range candidates {
		if len(placed) >= count {
			break
		}
		if tooClose(c.coord, placed, minGatheringDist) {
			continue
		}
		kind := GatheringSquare
		if len(placed) > 0 {
			kind = GatheringKind(1 + rng.Intn(len(gatheringKindNames)-1))
		}
		g := Gathering{
			ID:    uint64(len(placed) + 1),
			Name:  names[len(placed)],
			Kind:  kind,
			Coord: c.coord,
			Score: c.score,
		}
		id := g.ID
		m.Get(c.coord).GatheringID = &id
		placed = append(placed, g)
	}

	m.Gatherings = placed
	return placed
}

// gatheringScore evaluates how likely people are to meet on a hex.
// Prefers busy open ground with walkable surroundings.
func gatheringScore(m *Map, coord HexCoord, hex *Hex) float64 {
	score := hex.Footfall * 3.0

	switch hex.Terrain {
	case TerrainPlains:
		score += 1.0
	case TerrainForest:
		score += 0.3
	case TerrainHills:
		score += 0.1
	default:
		return 0
	}

	// Bonus for open surroundings.
	open := 0
	for _, nc := range coord.Neighbors() {
		if m.Passable(nc) {
			open++
		}
	}
	score += float64(open) * 0.15

	return score
}

func tooClose(coord HexCoord, existing []Gathering, minDist int) bool {
	for _, g := range existing {
		if Distance(coord, g.Coord) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural place names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Old", "New", "Deep", "Long",
		"Broad", "Gold", "Frost", "Thorn", "Elm", "Oak", "Copper",
	}
	suffixes := []string{
		"well", "gate", "cross", "green", "hall", "yard", "corner",
		"steps", "bridge", "row", "stones", "oak", "hearth", "lantern",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)
	maxNames := len(prefixes) * len(suffixes)

	for len(names) < count && len(used) < maxNames {
		name := prefixes[rng.Intn(len(prefixes))] + " " + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	for len(names) < count {
		names = append(names, "Commons")
	}

	return names
}
