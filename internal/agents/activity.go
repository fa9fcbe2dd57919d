// Daily routine: a small schedule-driven state machine.
// Each sim-hour agents pick what they are doing; gossip only happens when
// they are not busy.
package agents

import "github.com/talgya/hearsay/internal/world"

// Activity is what an agent is doing this hour.
type Activity uint8

const (
	ActivityIdle        Activity = iota
	ActivityWorking                     // At their trade; can still chat
	ActivitySocializing                 // At a gathering place
	ActivityTraveling                   // Walking somewhere; too busy to stop
	ActivityResting                     // Asleep
)

var activityNames = [...]string{"idle", "working", "socializing", "traveling", "resting"}

func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "unknown"
}

// Busy reports whether the activity keeps an agent out of conversation.
func (a Activity) Busy() bool {
	return a == ActivityTraveling || a == ActivityResting
}

// Action represents what an agent decided to do this hour.
type Action struct {
	AgentID  AgentID
	Activity Activity
	Target   *world.HexCoord // Where to walk, if anywhere
	Detail   string          // Human-readable description for logs
}

// Decide picks the agent's activity for the given hour of day (0–23).
// gathering is the nearest gathering place; talkative agents go there more.
func Decide(a *Agent, hour int, gathering *world.HexCoord) Action {
	if !a.Alive {
		return Action{AgentID: a.ID, Activity: ActivityIdle}
	}

	switch {
	case hour >= 22 || hour < 6:
		return goTo(a, a.Home, ActivityResting, a.Name+" sleeps")
	case hour >= 17 && gathering != nil && a.wantsCompany(hour):
		return goTo(a, *gathering, ActivitySocializing, a.Name+" joins the crowd")
	case hour >= 8 && hour < 17:
		return Action{AgentID: a.ID, Activity: ActivityWorking, Detail: a.Name + " goes about their work"}
	default:
		return Action{AgentID: a.ID, Activity: ActivityIdle, Detail: a.Name + " idles about"}
	}
}

// wantsCompany is a deterministic per-agent, per-hour coin weighted by talkativeness.
func (a *Agent) wantsCompany(hour int) bool {
	roll := float32((uint64(a.ID)*2654435761+uint64(hour)*40503)%100) / 100
	return roll < 0.25+a.Talkative*0.6
}

func goTo(a *Agent, dest world.HexCoord, arrived Activity, detail string) Action {
	if a.Position == dest {
		return Action{AgentID: a.ID, Activity: arrived, Detail: detail}
	}
	target := dest
	return Action{AgentID: a.ID, Activity: ActivityTraveling, Target: &target, Detail: a.Name + " is on the way"}
}

// ApplyAction updates the agent's activity and walks up to steps hexes toward
// the action's target. Returns the new position.
func ApplyAction(a *Agent, action Action, m *world.Map, steps int) world.HexCoord {
	a.Activity = action.Activity
	a.Destination = action.Target
	if action.Target == nil {
		return a.Position
	}
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps && a.Position != *action.Target; i++ {
		if !step(a, *action.Target, m) {
			break
		}
	}
	if a.Position == *action.Target {
		a.Destination = nil
	}
	return a.Position
}

// step moves one hex toward target, going around water. Reports whether the
// agent moved.
func step(a *Agent, target world.HexCoord, m *world.Map) bool {
	next := world.StepToward(a.Position, target)
	if m == nil || m.Passable(next) {
		a.Position = next
		return true
	}
	for _, n := range a.Position.Neighbors() {
		if m.Passable(n) && world.Distance(n, target) <= world.Distance(a.Position, target) {
			a.Position = n
			return true
		}
	}
	return false
}
