// Affinity groups: factions and guilds agents belong to with some strength.
// Inter-group relations feed the disharmony side of the gossip bias.
package social

// GroupID is a unique identifier for an affinity group.
type GroupID uint64

// GroupKind categorizes the nature of a group.
type GroupKind uint8

const (
	GroupFaction      GroupKind = iota // Political or martial allegiance
	GroupGuild                         // Trade and craft
	GroupKin                           // Extended family
	GroupCongregation                  // Spiritual
	GroupGang                          // Underground
)

// AffinityGroup is an organization agents can hold membership in.
type AffinityGroup struct {
	ID   GroupID   `json:"id"`
	Name string    `json:"name"`
	Kind GroupKind `json:"kind"`

	// Relations with other groups (group ID → -1 hostile to +1 allied).
	Relations map[GroupID]float32 `json:"relations"`
}

// Membership is an agent's tie to one group.
type Membership struct {
	Group    GroupID `json:"group"`
	Strength float32 `json:"strength"` // 0.0–1.0
}

// Groups is a lookup of affinity groups by ID.
type Groups map[GroupID]*AffinityGroup

// Relation returns how group a regards group b. Unknown groups are neutral; a
// group is fully allied with itself.
func (g Groups) Relation(a, b GroupID) float32 {
	if a == b {
		return 1
	}
	ga, ok := g[a]
	if !ok {
		return 0
	}
	return ga.Relations[b]
}

// SeedGroups creates the initial groups and their standing with each other.
func SeedGroups() Groups {
	groups := []*AffinityGroup{
		{ID: 1, Name: "The Crown", Kind: GroupFaction},
		{ID: 2, Name: "Merchant's Compact", Kind: GroupGuild},
		{ID: 3, Name: "Iron Brotherhood", Kind: GroupFaction},
		{ID: 4, Name: "Verdant Circle", Kind: GroupCongregation},
		{ID: 5, Name: "Ashen Path", Kind: GroupGang},
	}
	out := make(Groups, len(groups))
	for _, g := range groups {
		g.Relations = make(map[GroupID]float32)
		out[g.ID] = g
	}

	setMutual := func(a, b GroupID, v float32) {
		out[a].Relations[b] = v
		out[b].Relations[a] = v
	}
	setMutual(1, 3, 0.4)
	setMutual(1, 5, -0.9)
	setMutual(2, 5, -0.6)
	setMutual(2, 4, 0.2)
	setMutual(3, 4, -0.3)
	setMutual(3, 5, -0.7)
	return out
}
