// Village generation using layered simplex noise.
// Elevation and moisture layers give terrain; a third layer gives footfall.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Radius     int     `yaml:"radius"`      // Hex grid radius
	Seed       int64   `yaml:"seed"`        // Random seed (0 = random)
	WaterLevel float64 `yaml:"water_level"` // Elevation threshold for ponds (0.0–1.0)
	HillLevel  float64 `yaml:"hill_level"`  // Elevation threshold for hills (0.0–1.0)
	Gatherings int     `yaml:"gatherings"`  // Number of gathering places to seed
}

// DefaultGenConfig returns a reasonable village-sized configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:     12,
		Seed:       0,
		WaterLevel: 0.22,
		HillLevel:  0.74,
		Gatherings: 6,
	}
}

// SmallTestConfig returns a tiny map for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:     4,
		Seed:       42,
		WaterLevel: 0.15,
		HillLevel:  0.80,
		Gatherings: 3,
	}
}

// Generate creates a complete map with terrain, footfall and gathering places.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)
	footNoise := opensimplex.NewNormalized(seed + 2)

	m := NewMap(cfg.Radius)

	for _, coord := range (HexCoord{}).Within(cfg.Radius) {
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		x := float64(coord.Q) + float64(coord.R)*0.5
		y := float64(coord.R) * math.Sqrt(3.0) / 2.0

		elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
		moist := octaveNoise(moistNoise, x, y, 3, 0.10, 0.5)

		// People crowd toward the middle of the village.
		distFromCenter := math.Sqrt(x*x+y*y) / float64(max(cfg.Radius, 1))
		centerPull := 1.0 - math.Min(distFromCenter, 1.0)
		foot := octaveNoise(footNoise, x, y, 2, 0.15, 0.5)*0.5 + centerPull*0.5

		terrain := deriveTerrain(elev, moist, cfg)
		if terrain == TerrainWater {
			foot = 0
		} else if terrain == TerrainHills {
			foot *= 0.5
		}

		m.Set(&Hex{
			Coord:     coord,
			Terrain:   terrain,
			Elevation: elev,
			Footfall:  foot,
		})
	}

	// The village center is always walkable.
	if h := m.Get(HexCoord{}); h != nil && h.Terrain == TerrainWater {
		h.Terrain = TerrainPlains
		h.Footfall = 1.0
	}

	PlaceGatherings(m, seed, cfg.Gatherings)
	return m
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLevel:
		return TerrainWater
	case elev > cfg.HillLevel:
		return TerrainHills
	case moist > 0.6:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, hex := range m.Hexes {
		counts[hex.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
