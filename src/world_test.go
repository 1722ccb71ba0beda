package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"siegefield-server/config"
	"siegefield-server/pathfinding"
)

// testServer builds a server with a deterministic arena: no random
// obstacles, one objective in the center.
func testServer(t *testing.T) *GameServer {
	t.Helper()
	cfg := config.Config{
		TickInterval:    100 * time.Millisecond,
		WaveInterval:    time.Second,
		AgentsPerWave:   5,
		MaxAgents:       50,
		NumObstacles:    0,
		DiagonalMoves:   true,
		RefreshMaxEdits: 8,
	}
	return NewGameServer(cfg)
}

func TestCreateArena_SeedsGoalAtObjective(t *testing.T) {
	s := testServer(t)
	require.Len(t, s.arena.objectives, 1)
	require.False(t, s.arena.cleared)

	for _, obj := range s.arena.objectives {
		cx := obj.Pos.X + obj.Dims.Width/2
		cy := obj.Pos.Y + obj.Dims.Height/2
		require.Equal(t, uint32(0), s.arena.coordinator.ValueAt(cx, cy))
	}
	// A far corner flows toward the center.
	require.NotEqual(t, pathfinding.Vec2{}, s.arena.coordinator.Direction(10, 10))
}

func TestQueuedEdits_ApplyAtTickBoundary(t *testing.T) {
	s := testServer(t)
	s.QueuePlaceObstacle(Point{X: 100, Y: 100}, Dimensions{Width: 200, Height: 200})

	// Queued, not applied: the world is untouched until the tick drains it.
	require.Empty(t, s.arena.obstacles)
	probe := s.arena.coordinator.Costs().GetCost(s.arena.coordinator.Grid().CellIndex(200, 200))
	require.Less(t, probe, pathfinding.CostImpassable)

	s.mu.Lock()
	s.applyQueuedEdits()
	_, err := s.arena.coordinator.RefreshIfDirty()
	s.mu.Unlock()
	require.NoError(t, err)

	require.Len(t, s.arena.obstacles, 1)
	probe = s.arena.coordinator.Costs().GetCost(s.arena.coordinator.Grid().CellIndex(200, 200))
	require.Equal(t, pathfinding.CostImpassable, probe)
	// The blocked cell no longer carries a flow vector.
	require.Equal(t, pathfinding.Vec2{}, s.arena.coordinator.Direction(200, 200))
}

func TestClearObstacle_RestoresCells(t *testing.T) {
	s := testServer(t)
	s.QueuePlaceObstacle(Point{X: 100, Y: 100}, Dimensions{Width: 200, Height: 200})
	s.mu.Lock()
	s.applyQueuedEdits()
	s.mu.Unlock()

	var id string
	for obstacleID := range s.arena.obstacles {
		id = obstacleID
	}
	s.QueueClearObstacle(id)
	s.mu.Lock()
	s.applyQueuedEdits()
	_, err := s.arena.coordinator.RefreshIfDirty()
	s.mu.Unlock()
	require.NoError(t, err)

	require.Empty(t, s.arena.obstacles)
	probe := s.arena.coordinator.Costs().GetCost(s.arena.coordinator.Grid().CellIndex(200, 200))
	require.Equal(t, pathfinding.CostWalkable, probe)
}

func TestClearObstacle_KeepsOverlapImpassable(t *testing.T) {
	s := testServer(t)
	s.QueuePlaceObstacle(Point{X: 100, Y: 100}, Dimensions{Width: 100, Height: 100})
	s.QueuePlaceObstacle(Point{X: 150, Y: 150}, Dimensions{Width: 100, Height: 100})
	s.mu.Lock()
	s.applyQueuedEdits()
	s.mu.Unlock()
	require.Len(t, s.arena.obstacles, 2)

	// Remove the first; the overlap region belongs to the survivor.
	var first string
	for id, obs := range s.arena.obstacles {
		if obs.Pos.X == 100 {
			first = id
		}
	}
	require.NotEmpty(t, first)
	s.QueueClearObstacle(first)
	s.mu.Lock()
	s.applyQueuedEdits()
	s.mu.Unlock()

	grid := s.arena.coordinator.Grid()
	costs := s.arena.coordinator.Costs()
	require.Equal(t, pathfinding.CostImpassable, costs.GetCost(grid.CellIndex(175, 175)))
	require.Equal(t, pathfinding.CostWalkable, costs.GetCost(grid.CellIndex(110, 110)))
}

func TestGoalEdit_ReplacesObjectives(t *testing.T) {
	s := testServer(t)
	s.QueueSetGoals([]Point{{X: 300, Y: 300}, {X: 2700, Y: 2700}})
	s.mu.Lock()
	s.applyQueuedEdits()
	s.mu.Unlock()

	require.Len(t, s.arena.objectives, 2)
	require.Equal(t, uint32(0), s.arena.coordinator.ValueAt(300, 300))
	require.Equal(t, uint32(0), s.arena.coordinator.ValueAt(2700, 2700))
	// The old center objective is gone and its cell is a plain cell again.
	require.NotEqual(t, uint32(0), s.arena.coordinator.ValueAt(1500, 1500))
}

func TestGoalEdit_EmptyIgnored(t *testing.T) {
	s := testServer(t)
	s.QueueSetGoals(nil)
	s.mu.Lock()
	s.applyQueuedEdits()
	s.mu.Unlock()
	require.Len(t, s.arena.objectives, 1)
	require.False(t, s.arena.cleared)
}
