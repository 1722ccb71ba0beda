package game

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"siegefield-server/pathfinding"
)

func tickOnce(s *GameServer) {
	s.mu.Lock()
	s.tick++
	s.applyQueuedEdits()
	s.arena.coordinator.RefreshIfDirty()
	s.spawnWaves()
	s.updateAgents()
	s.mu.Unlock()
}

func TestSpawnWaves_CadenceAndCap(t *testing.T) {
	s := testServer(t)

	tickOnce(s)
	require.Len(t, s.arena.agents, s.agentsPerWave)

	// The next tick is inside the wave interval: no new spawns.
	tickOnce(s)
	require.Len(t, s.arena.agents, s.agentsPerWave)

	// Force the cadence forward until the cap binds.
	for i := 0; i < 30; i++ {
		s.mu.Lock()
		s.lastWaveTick = 0
		s.mu.Unlock()
		tickOnce(s)
	}
	require.LessOrEqual(t, len(s.arena.agents), s.maxAgents)
	require.Equal(t, s.maxAgents, len(s.arena.agents))
}

func TestUpdateAgents_MarchTowardObjective(t *testing.T) {
	s := testServer(t)
	agent := &AgentState{
		ID:    "scout",
		Pos:   Point{X: 100, Y: 1500},
		Dims:  Dimensions{Width: 10, Height: 10},
		Mode:  MARCHING,
		Speed: s.agentSpeed,
	}
	s.arena.agents[agent.ID] = agent

	distBefore := math.Hypot(agent.Pos.X-1500, agent.Pos.Y-1500)
	s.mu.Lock()
	s.updateAgents()
	s.mu.Unlock()
	distAfter := math.Hypot(agent.Pos.X-1500, agent.Pos.Y-1500)

	require.Less(t, distAfter, distBefore)
	require.Equal(t, MARCHING, agent.Mode)
	require.Equal(t, RIGHT, agent.Direction)
	require.InDelta(t, 1.0, math.Hypot(agent.Heading.X, agent.Heading.Y), 1e-9)
}

func TestUpdateAgents_ContactDamagesAndDespawns(t *testing.T) {
	s := testServer(t)
	var obj *ObjectiveState
	for _, o := range s.arena.objectives {
		obj = o
	}
	obj.Life = s.agentDamage * 3

	// One agent in contact: it detonates, the objective survives.
	sapper := &AgentState{
		ID:   "sapper",
		Pos:  Point{X: obj.Pos.X + 5, Y: obj.Pos.Y + 5},
		Dims: Dimensions{Width: 10, Height: 10},
		Mode: MARCHING,
	}
	s.arena.agents[sapper.ID] = sapper

	s.mu.Lock()
	s.updateAgents()
	s.mu.Unlock()
	require.Equal(t, ATTACKING, sapper.Mode)
	require.Equal(t, s.agentDamage*2, obj.Life)
	require.Empty(t, s.arena.agents)
	require.False(t, s.arena.cleared)

	// Two more finish it; the lone objective falling clears the arena.
	for i := 0; i < 2; i++ {
		a := &AgentState{
			ID:   fmt.Sprintf("sapper-%d", i),
			Pos:  Point{X: obj.Pos.X + 5, Y: obj.Pos.Y + 5},
			Dims: Dimensions{Width: 10, Height: 10},
			Mode: MARCHING,
		}
		s.arena.agents[a.ID] = a
		s.mu.Lock()
		s.updateAgents()
		s.mu.Unlock()
	}
	require.Empty(t, s.arena.objectives)
	require.True(t, s.arena.cleared)

	// Survivors stand down once the arena is cleared.
	idle := &AgentState{
		ID:   "idle",
		Pos:  Point{X: 100, Y: 100},
		Dims: Dimensions{Width: 10, Height: 10},
		Mode: MARCHING,
	}
	s.arena.agents[idle.ID] = idle
	s.mu.Lock()
	s.updateAgents()
	s.mu.Unlock()
	require.Equal(t, HOLDING, idle.Mode)
	require.Equal(t, NONE, idle.Direction)
}

func TestUpdateAgents_HoldOnUnreachableCell(t *testing.T) {
	s := testServer(t)
	// Wall off a pocket in the far corner and drop an agent inside it.
	costs := s.arena.coordinator.Costs()
	grid := s.arena.coordinator.Grid()
	pocketCol, pocketRow := 2, 2
	costs.SetRectCost(pocketCol-1, pocketRow-1, pocketCol+1, pocketRow+1, pathfinding.CostImpassable)
	costs.SetCost(grid.IndexOf(pocketCol, pocketRow), pathfinding.CostWalkable)
	require.NoError(t, s.arena.coordinator.Refresh())

	x, y := grid.CellCenter(grid.IndexOf(pocketCol, pocketRow))
	agent := &AgentState{
		ID:   "trapped",
		Pos:  Point{X: x, Y: y},
		Dims: Dimensions{Width: 10, Height: 10},
		Mode: MARCHING,
	}
	s.arena.agents[agent.ID] = agent

	s.mu.Lock()
	s.updateAgents()
	s.mu.Unlock()
	require.Equal(t, HOLDING, agent.Mode)
	require.Equal(t, Point{X: x, Y: y}, agent.Pos)
}

func TestAgentsRouteAroundQueuedWall(t *testing.T) {
	s := testServer(t)
	// A wall across most of the arena's width, with a gap on the right.
	s.QueuePlaceObstacle(Point{X: 0, Y: 700}, Dimensions{Width: 2600, Height: 50})

	agent := &AgentState{
		ID:    "runner",
		Pos:   Point{X: 1500, Y: 100},
		Dims:  Dimensions{Width: 10, Height: 10},
		Mode:  MARCHING,
		Speed: s.agentSpeed,
	}
	s.arena.agents[agent.ID] = agent

	// March for plenty of ticks; the agent must cross below the wall and
	// detonate on the objective.
	for i := 0; i < 600; i++ {
		s.mu.Lock()
		s.applyQueuedEdits()
		s.arena.coordinator.RefreshIfDirty()
		s.updateAgents()
		s.mu.Unlock()
		if _, alive := s.arena.agents[agent.ID]; !alive {
			break
		}
	}
	require.Equal(t, ATTACKING, agent.Mode)
	require.NotContains(t, s.arena.agents, agent.ID)
	require.Greater(t, agent.Pos.Y, 750.0)
}
