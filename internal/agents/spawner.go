// Agent spawning: creates the initial population with homes, temperament,
// group memberships and an empty rumor ledger apiece.
package agents

import (
	"math/rand"
	"sort"

	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
	tuning gossip.Tuning
	groups []social.GroupID
}

// NewSpawner creates an agent spawner with the given seed. Every spawned agent
// gets a ledger built from tuning; memberships are drawn from groups.
func NewSpawner(seed int64, tuning gossip.Tuning, groups social.Groups) *Spawner {
	ids := make([]social.GroupID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
		tuning: tuning,
		groups: ids,
	}
}

// SpawnPopulation creates count agents with homes spread over the map's
// passable hexes, weighted by footfall.
func (s *Spawner) SpawnPopulation(count int, m *world.Map) []*Agent {
	homes := s.homeCandidates(m)
	agents := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		home := world.HexCoord{}
		if len(homes) > 0 {
			home = s.pickHome(homes)
		}
		agents = append(agents, s.Spawn(home))
	}
	s.seedRelationships(agents)
	return agents
}

// Spawn creates a single agent living at home.
func (s *Spawner) Spawn(home world.HexCoord) *Agent {
	id := s.nextID
	s.nextID++

	return &Agent{
		ID:            id,
		Name:          s.generateName(),
		Position:      home,
		Home:          home,
		Relationships: make(map[AgentID]social.Relationship),
		Memberships:   s.memberships(),
		Talkative:     clamp32(float32(s.rng.NormFloat64()*0.2+0.5), 0, 1),
		Ledger:        gossip.NewLedger(s.tuning),
		NextDecayTick: uint64(s.rng.Intn(int(max(s.tuning.ActiveDecayDelay, 1)))),
		Alive:         true,
	}
}

type homeCandidate struct {
	coord  world.HexCoord
	weight float64
}

func (s *Spawner) homeCandidates(m *world.Map) []homeCandidate {
	if m == nil {
		return nil
	}
	var out []homeCandidate
	for _, c := range m.Coords() {
		hex := m.Get(c)
		if !hex.Passable() {
			continue
		}
		out = append(out, homeCandidate{coord: c, weight: 0.1 + hex.Footfall})
	}
	return out
}

func (s *Spawner) pickHome(cands []homeCandidate) world.HexCoord {
	total := 0.0
	for _, c := range cands {
		total += c.weight
	}
	roll := s.rng.Float64() * total
	for _, c := range cands {
		roll -= c.weight
		if roll <= 0 {
			return c.coord
		}
	}
	return cands[len(cands)-1].coord
}

// memberships gives an agent zero to two affinity groups.
func (s *Spawner) memberships() []social.Membership {
	if len(s.groups) == 0 {
		return nil
	}
	n := s.rng.Intn(3)
	var out []social.Membership
	for _, idx := range s.rng.Perm(len(s.groups))[:min(n, len(s.groups))] {
		out = append(out, social.Membership{
			Group:    s.groups[idx],
			Strength: clamp32(0.3+s.rng.Float32()*0.7, 0, 1),
		})
	}
	return out
}

// seedRelationships links each agent to a few others, favoring near neighbors.
// Views are directed, so the two sides of a pair start out similar but not equal.
func (s *Spawner) seedRelationships(pop []*Agent) {
	for _, a := range pop {
		ties := 2 + s.rng.Intn(4)
		for t := 0; t < ties && len(pop) > 1; t++ {
			b := pop[s.rng.Intn(len(pop))]
			if b.ID == a.ID {
				continue
			}
			if _, known := a.Relationships[b.ID]; known {
				continue
			}
			closeness := 1 - float32(min(world.Distance(a.Home, b.Home), 10))/10
			base := float32(s.rng.NormFloat64()*0.35) + closeness*0.3
			a.SetRelationship(b.ID, s.jitter(base))
			if _, known := b.Relationships[a.ID]; !known {
				b.SetRelationship(a.ID, s.jitter(base))
			}
		}
	}
}

func (s *Spawner) jitter(base float32) social.Relationship {
	j := func() float32 { return base + float32(s.rng.NormFloat64()*0.1) }
	return social.Relationship{Trust: j(), Affection: j(), Respect: j(), Comfort: j()}
}

func (s *Spawner) generateName() string {
	var firsts []string
	if s.rng.Float32() < 0.5 {
		firsts = maleNames
	} else {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Per", "Quinn", "Rowan", "Stellan", "Theron", "Ulric",
	"Varen", "Wren", "Yorick", "Zander", "Arlen", "Beric", "Cade",
	"Dorian", "Edric", "Falk", "Gunnar", "Hugo", "Ivar", "Jorik",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
	"Willa", "Yara", "Zara", "Ava", "Birgit", "Cora", "Dagny",
	"Eira", "Fern", "Gwen", "Hilde", "Inga", "Johanna", "Katla",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart",
	"Deepwell", "Brightwater", "Oakenshield", "Redforge", "Windholm",
	"Marshwood", "Goldhaven", "Nightingale", "Riverstone", "Steelworth",
	"Embercroft", "Holloway", "Dawnridge", "Farrow", "Wyatt", "Thatcher",
	"Briar", "Caldwell", "Frost", "Harper", "Mercer", "Ward", "Cross",
}
