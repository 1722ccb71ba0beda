package game

import (
	"log"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"siegefield-server/pathfinding"
)

// spawnWaves adds a wave of agents at the arena edges on the configured
// cadence. Spawning pauses while the arena is cleared or full.
func (s *GameServer) spawnWaves() {
	if s.arena.cleared || len(s.arena.agents) >= s.maxAgents {
		return
	}
	if s.tick-s.lastWaveTick < s.ticksPerWave && s.lastWaveTick != 0 {
		return
	}
	s.lastWaveTick = s.tick

	spawned := 0
	for i := 0; i < s.agentsPerWave && len(s.arena.agents) < s.maxAgents; i++ {
		pos, ok := s.edgeSpawnPoint()
		if !ok {
			continue
		}
		agent := &AgentState{
			ID:        uuid.New().String(),
			Pos:       pos,
			Dims:      Dimensions{Width: 10, Height: 10},
			Direction: NONE,
			Mode:      MARCHING,
			Speed:     s.agentSpeed,
		}
		s.arena.agents[agent.ID] = agent
		spawned++
	}
	if spawned > 0 {
		log.Printf("Wave spawned: %d agents (%d alive).", spawned, len(s.arena.agents))
	}
}

// edgeSpawnPoint picks a random walkable position on the arena perimeter.
func (s *GameServer) edgeSpawnPoint() (Point, bool) {
	arena := s.arena
	costs := arena.coordinator.Costs()
	grid := arena.coordinator.Grid()
	margin := grid.CellSize() / 2

	for attempt := 0; attempt < 10; attempt++ {
		var p Point
		switch rand.Intn(4) {
		case 0: // top
			p = Point{X: rand.Float64() * arena.worldW, Y: margin}
		case 1: // right
			p = Point{X: arena.worldW - margin, Y: rand.Float64() * arena.worldH}
		case 2: // bottom
			p = Point{X: rand.Float64() * arena.worldW, Y: arena.worldH - margin}
		default: // left
			p = Point{X: margin, Y: rand.Float64() * arena.worldH}
		}
		if costs.GetCost(grid.CellIndex(p.X, p.Y)) < pathfinding.CostImpassable {
			return p, true
		}
	}
	return Point{}, false
}

// updateAgents advances every agent one tick along the published flow
// field. Agents carry no paths; the field is the only steering input.
func (s *GameServer) updateAgents() {
	arena := s.arena
	if arena.cleared {
		for _, agent := range arena.agents {
			agent.Mode = HOLDING
			agent.Direction = NONE
			agent.Heading = pathfinding.Vec2{}
		}
		return
	}

	dt := s.cfg.TickInterval.Seconds()
	for id, agent := range arena.agents {
		if obj := s.touchedObjective(agent); obj != nil {
			// Contact detonates the agent: it deals its damage and despawns.
			agent.Mode = ATTACKING
			agent.Direction = NONE
			delete(arena.agents, id)
			s.damageObjective(obj)
			continue
		}

		v := arena.coordinator.Direction(agent.Pos.X, agent.Pos.Y)
		agent.Heading = v
		if v.X == 0 && v.Y == 0 {
			// Unreachable cell or standing on a goal: hold position.
			agent.Mode = HOLDING
			agent.Direction = NONE
			continue
		}

		agent.Mode = MARCHING
		step := agent.Speed * dt
		agent.Pos.X = clamp(agent.Pos.X+v.X*step, 0, arena.worldW)
		agent.Pos.Y = clamp(agent.Pos.Y+v.Y*step, 0, arena.worldH)
		s.updateAgentDirection(agent, v.X, v.Y)
	}
}

func (s *GameServer) updateAgentDirection(agent *AgentState, dirX, dirY float64) {
	angle := math.Atan2(dirY, dirX)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	directionIndex := (int(math.Round(angle/(math.Pi/4))) + 2) % 8
	agent.Direction = Direction(directionIndex)
}

// touchedObjective returns the objective the agent overlaps, if any.
func (s *GameServer) touchedObjective(agent *AgentState) *ObjectiveState {
	agentRect := Rectangle{
		MinX: agent.Pos.X, MinY: agent.Pos.Y,
		MaxX: agent.Pos.X + agent.Dims.Width, MaxY: agent.Pos.Y + agent.Dims.Height,
	}
	for _, obj := range s.arena.objectives {
		objRect := Rectangle{
			MinX: obj.Pos.X, MinY: obj.Pos.Y,
			MaxX: obj.Pos.X + obj.Dims.Width, MaxY: obj.Pos.Y + obj.Dims.Height,
		}
		if rectsOverlap(agentRect, objRect) {
			return obj
		}
	}
	return nil
}

// damageObjective applies one tick of contact damage. A destroyed objective
// drops out of the goal set and the field is reseeded over the survivors.
func (s *GameServer) damageObjective(obj *ObjectiveState) {
	obj.Life -= s.agentDamage
	if obj.Life > 0 {
		return
	}
	log.Printf("Objective %s destroyed.", obj.ID)
	delete(s.arena.objectives, obj.ID)
	if err := s.reseedGoals(); err != nil {
		log.Printf("Goal reseed after objective loss failed: %v", err)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
