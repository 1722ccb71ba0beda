package game

import (
	"log"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"siegefield-server/config"
	"siegefield-server/pathfinding"
)

// createArena builds the world: the navigation grid sized from config, a
// centered objective, procedural obstacles carved into the cost field, and
// the initial goal set.
func (s *GameServer) createArena() {
	log.Println("Creating arena...")

	grid, err := pathfinding.NewGrid(config.WORLD_WIDTH, config.WORLD_HEIGHT, config.FIELD_CELL_SIZE)
	if err != nil {
		log.Fatalf("Arena grid construction failed: %v", err)
	}

	arena := &ArenaState{
		coordinator: pathfinding.NewFieldCoordinator(grid, s.cfg.DiagonalMoves, s.cfg.RefreshMaxEdits),
		obstacles:   make(map[string]ObjectState),
		objectives:  make(map[string]*ObjectiveState),
		agents:      make(map[string]*AgentState),
		worldW:      config.WORLD_WIDTH,
		worldH:      config.WORLD_HEIGHT,
	}
	s.arena = arena

	// One defended objective at the arena center; clients may add more via
	// set_goal edits.
	obj := &ObjectiveState{
		ID:      uuid.New().String(),
		Pos:     Point{X: arena.worldW/2 - 25, Y: arena.worldH/2 - 25},
		Dims:    Dimensions{Width: 50, Height: 50},
		Life:    config.DefaultObjectiveLife,
		MaxLife: config.DefaultObjectiveLife,
	}
	arena.objectives[obj.ID] = obj

	s.generateObstacles(s.cfg.NumObstacles)

	if err := s.reseedGoals(); err != nil {
		log.Fatalf("Initial goal seeding failed: %v", err)
	}
	log.Printf("Arena ready: %dx%d cells, %d obstacles.", grid.Columns(), grid.Rows(), len(arena.obstacles))
}

// generateObstacles places random rectangular obstacles, avoiding objective
// zones and each other, and carves them into the cost field.
func (s *GameServer) generateObstacles(numObstacles int) {
	arena := s.arena

	keepOut := make([]Rectangle, 0, len(arena.objectives))
	for _, obj := range arena.objectives {
		// A margin around each objective keeps its doorstep walkable.
		keepOut = append(keepOut, Rectangle{
			MinX: obj.Pos.X - 100, MinY: obj.Pos.Y - 100,
			MaxX: obj.Pos.X + obj.Dims.Width + 100, MaxY: obj.Pos.Y + obj.Dims.Height + 100,
		})
	}

	maxDim := math.Max(100, arena.worldW/15)
	for placed, attempts := 0, 0; placed < numObstacles && attempts < numObstacles*10; attempts++ {
		w := rand.Float64()*(maxDim-50) + 50
		h := rand.Float64()*(maxDim-50) + 50
		pos := Point{
			X: rand.Float64() * (arena.worldW - w),
			Y: rand.Float64() * (arena.worldH - h),
		}
		rect := Rectangle{MinX: pos.X, MinY: pos.Y, MaxX: pos.X + w, MaxY: pos.Y + h}

		overlap := false
		for _, ko := range keepOut {
			if rectsOverlap(rect, ko) {
				overlap = true
				break
			}
		}
		if !overlap {
			for _, existing := range arena.obstacles {
				if rectsOverlap(rect, Rectangle{
					MinX: existing.Pos.X, MinY: existing.Pos.Y,
					MaxX: existing.Pos.X + existing.Dims.Width, MaxY: existing.Pos.Y + existing.Dims.Height,
				}) {
					overlap = true
					break
				}
			}
		}
		if overlap {
			continue
		}

		s.carveObstacle(ObjectState{
			ID:   uuid.New().String(),
			Pos:  pos,
			Dims: Dimensions{Width: w, Height: h},
			Type: "obstacle",
		})
		placed++
	}
}

// carveObstacle registers the obstacle and marks its cells impassable. The
// coordinator is notified once per obstacle, not per cell.
func (s *GameServer) carveObstacle(obs ObjectState) {
	arena := s.arena
	grid := arena.coordinator.Grid()
	costs := arena.coordinator.Costs()

	minCol, minRow := grid.CellCoords(grid.CellIndex(obs.Pos.X, obs.Pos.Y))
	maxCol, maxRow := grid.CellCoords(grid.CellIndex(obs.Pos.X+obs.Dims.Width-1e-9, obs.Pos.Y+obs.Dims.Height-1e-9))
	costs.SetRectCost(minCol, minRow, maxCol, maxRow, pathfinding.CostImpassable)

	arena.obstacles[obs.ID] = obs
	if err := arena.coordinator.NotifyObstacleChanged(); err != nil {
		log.Printf("Field refresh after obstacle change failed: %v", err)
	}
}

// clearObstacle removes an obstacle and restores its cells. Overlapping
// obstacles are re-carved afterward so shared cells stay impassable.
func (s *GameServer) clearObstacle(obstacleID string) {
	arena := s.arena
	obs, ok := arena.obstacles[obstacleID]
	if !ok {
		log.Printf("WARNING: Attempted to clear non-existent obstacle: %s", obstacleID)
		return
	}
	delete(arena.obstacles, obstacleID)

	grid := arena.coordinator.Grid()
	costs := arena.coordinator.Costs()
	minCol, minRow := grid.CellCoords(grid.CellIndex(obs.Pos.X, obs.Pos.Y))
	maxCol, maxRow := grid.CellCoords(grid.CellIndex(obs.Pos.X+obs.Dims.Width-1e-9, obs.Pos.Y+obs.Dims.Height-1e-9))
	costs.SetRectCost(minCol, minRow, maxCol, maxRow, pathfinding.CostWalkable)

	cleared := Rectangle{MinX: obs.Pos.X, MinY: obs.Pos.Y, MaxX: obs.Pos.X + obs.Dims.Width, MaxY: obs.Pos.Y + obs.Dims.Height}
	for _, other := range arena.obstacles {
		if rectsOverlap(cleared, Rectangle{
			MinX: other.Pos.X, MinY: other.Pos.Y,
			MaxX: other.Pos.X + other.Dims.Width, MaxY: other.Pos.Y + other.Dims.Height,
		}) {
			oMinCol, oMinRow := grid.CellCoords(grid.CellIndex(other.Pos.X, other.Pos.Y))
			oMaxCol, oMaxRow := grid.CellCoords(grid.CellIndex(other.Pos.X+other.Dims.Width-1e-9, other.Pos.Y+other.Dims.Height-1e-9))
			costs.SetRectCost(oMinCol, oMinRow, oMaxCol, oMaxRow, pathfinding.CostImpassable)
		}
	}

	if err := arena.coordinator.NotifyObstacleChanged(); err != nil {
		log.Printf("Field refresh after obstacle change failed: %v", err)
	}
}

// reseedGoals points the flow field at the centers of all living
// objectives. With none left the arena is cleared and agents stand down;
// the stale field is kept but ignored.
func (s *GameServer) reseedGoals() error {
	arena := s.arena
	goals := make([]pathfinding.Vec2, 0, len(arena.objectives))
	for _, obj := range arena.objectives {
		goals = append(goals, pathfinding.Vec2{
			X: obj.Pos.X + obj.Dims.Width/2,
			Y: obj.Pos.Y + obj.Dims.Height/2,
		})
	}
	if len(goals) == 0 {
		arena.cleared = true
		log.Println("All objectives destroyed; arena cleared.")
		return nil
	}
	return arena.coordinator.SetGoals(goals)
}

// applyQueuedEdits drains the edit queue at the top of a tick, before any
// field refresh, so cost mutations never race a wavefront expansion.
func (s *GameServer) applyQueuedEdits() {
	for _, edit := range s.editQueue {
		switch edit.kind {
		case editPlaceObstacle:
			s.carveObstacle(ObjectState{
				ID:   uuid.New().String(),
				Pos:  edit.pos,
				Dims: edit.dims,
				Type: "obstacle",
			})
		case editClearObstacle:
			s.clearObstacle(edit.obstacleID)
		case editSetGoals:
			s.applyGoalEdit(edit.goals)
		}
	}
	s.editQueue = s.editQueue[:0]
}

// applyGoalEdit replaces the objective set with fresh objectives at the
// requested positions and reseeds the field.
func (s *GameServer) applyGoalEdit(goals []Point) {
	if len(goals) == 0 {
		log.Println("WARNING: set_goal with no positions ignored.")
		return
	}
	arena := s.arena
	arena.objectives = make(map[string]*ObjectiveState)
	for _, p := range goals {
		obj := &ObjectiveState{
			ID:      uuid.New().String(),
			Pos:     Point{X: p.X - 25, Y: p.Y - 25},
			Dims:    Dimensions{Width: 50, Height: 50},
			Life:    config.DefaultObjectiveLife,
			MaxLife: config.DefaultObjectiveLife,
		}
		arena.objectives[obj.ID] = obj
	}
	arena.cleared = false
	if err := s.reseedGoals(); err != nil {
		log.Printf("Goal reseed failed: %v", err)
	}
}

// rectsOverlap checks if two rectangles overlap.
func rectsOverlap(r1, r2 Rectangle) bool {
	return r1.MinX < r2.MaxX && r1.MaxX > r2.MinX && r1.MinY < r2.MaxY && r1.MaxY > r2.MinY
}
