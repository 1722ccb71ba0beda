package pathfinding

import (
	"time"
)

// fieldPair is one integration/flow buffer generation. The coordinator keeps
// two: the published pair that agents read, and a scratch pair that the next
// refresh computes into before an atomic swap. Readers therefore never see a
// half-regenerated field; there are no locks because writer and readers are
// temporally separated by the simulation tick.
type fieldPair struct {
	integration *IntegrationField
	flow        *FlowField
}

// CoordinatorStats is a snapshot of refresh bookkeeping for metrics.
type CoordinatorStats struct {
	RefreshCount    uint64        `json:"refresh_count"`
	LastRefreshTime time.Duration `json:"last_refresh_ns"`
	PendingEdits    int           `json:"pending_edits"`
	ReachableCells  int           `json:"reachable_cells"`
	TotalCells      int           `json:"total_cells"`
}

// FieldCoordinator owns the cost field and both field buffer pairs, and
// decides when to recompute. Terrain code mutates costs through Costs() and
// calls NotifyObstacleChanged per edit; the simulation calls RefreshIfDirty
// once per tick. Edits never trigger a mid-burst recompute unless the burst
// exceeds maxEdits, at which point the coordinator refreshes immediately to
// bound how much work one deferred refresh accumulates.
type FieldCoordinator struct {
	grid     *Grid
	costs    *CostField
	diagonal bool

	published fieldPair
	scratch   fieldPair

	goals        []int
	pendingEdits int
	maxEdits     int

	refreshCount   uint64
	lastRefresh    time.Duration
	reachableCells int
}

// NewFieldCoordinator builds a coordinator over a fresh, fully walkable cost
// field. maxEdits is the obstacle-edit batching threshold; values below 1
// are treated as 1 (refresh after every edit).
func NewFieldCoordinator(grid *Grid, diagonal bool, maxEdits int) *FieldCoordinator {
	if maxEdits < 1 {
		maxEdits = 1
	}
	return &FieldCoordinator{
		grid:     grid,
		costs:    NewCostField(grid),
		diagonal: diagonal,
		published: fieldPair{
			integration: NewIntegrationField(grid, diagonal),
			flow:        NewFlowField(grid, diagonal),
		},
		scratch: fieldPair{
			integration: NewIntegrationField(grid, diagonal),
			flow:        NewFlowField(grid, diagonal),
		},
		maxEdits: maxEdits,
	}
}

// Grid returns the shared grid.
func (c *FieldCoordinator) Grid() *Grid { return c.grid }

// Costs exposes the mutable cost field. All mutations must happen between
// refreshes; the simulation applies queued terrain edits at the top of its
// tick, before RefreshIfDirty.
func (c *FieldCoordinator) Costs() *CostField { return c.costs }

// SetGoals replaces the goal set with the cells containing the given world
// positions and recomputes both fields immediately. An empty set is a
// configuration error.
func (c *FieldCoordinator) SetGoals(positions []Vec2) error {
	if len(positions) == 0 {
		return ErrNoGoals
	}
	goals := make([]int, 0, len(positions))
	for _, p := range positions {
		goals = append(goals, c.grid.CellIndex(p.X, p.Y))
	}
	c.goals = goals
	return c.Refresh()
}

// NotifyObstacleChanged records one pending terrain edit. Crossing the
// batching threshold forces an immediate refresh; otherwise the edit waits
// for the next RefreshIfDirty.
func (c *FieldCoordinator) NotifyObstacleChanged() error {
	c.pendingEdits++
	if c.pendingEdits >= c.maxEdits && len(c.goals) > 0 {
		return c.Refresh()
	}
	return nil
}

// RefreshIfDirty recomputes only when edits are pending since the last
// refresh. Returns whether a refresh ran.
func (c *FieldCoordinator) RefreshIfDirty() (bool, error) {
	if c.pendingEdits == 0 {
		return false, nil
	}
	return true, c.Refresh()
}

// Refresh performs one full recompute into the scratch buffers using the
// current goal and cost state, then swaps scratch and published. Safe to
// call when nothing changed; identical inputs produce an identical field.
func (c *FieldCoordinator) Refresh() error {
	if len(c.goals) == 0 {
		return ErrNoGoals
	}
	start := time.Now()

	if err := c.scratch.integration.Compute(c.costs, c.goals); err != nil {
		return err
	}
	if err := c.scratch.flow.Generate(c.scratch.integration, c.costs); err != nil {
		return err
	}

	c.published, c.scratch = c.scratch, c.published

	reachable := 0
	for i := 0; i < c.grid.Len(); i++ {
		if c.published.integration.Value(i) != Unreachable {
			reachable++
		}
	}
	c.reachableCells = reachable
	c.pendingEdits = 0
	c.refreshCount++
	c.lastRefresh = time.Since(start)
	return nil
}

// Direction returns the published flow vector at a world position: the zero
// vector before the first refresh, at goal cells and at unreachable cells.
func (c *FieldCoordinator) Direction(worldX, worldY float64) Vec2 {
	return c.published.flow.Direction(worldX, worldY)
}

// ValueAt returns the published accumulated cost at a world position, for
// decision logic that reasons about goal proximity rather than movement.
func (c *FieldCoordinator) ValueAt(worldX, worldY float64) uint32 {
	return c.published.integration.ValueAt(worldX, worldY)
}

// Published returns the live field pair, for inspection endpoints and tests.
func (c *FieldCoordinator) Published() (*IntegrationField, *FlowField) {
	return c.published.integration, c.published.flow
}

// Goals returns the current goal cells.
func (c *FieldCoordinator) Goals() []int { return c.goals }

// Stats returns refresh bookkeeping for the metrics API.
func (c *FieldCoordinator) Stats() CoordinatorStats {
	return CoordinatorStats{
		RefreshCount:    c.refreshCount,
		LastRefreshTime: c.lastRefresh,
		PendingEdits:    c.pendingEdits,
		ReachableCells:  c.reachableCells,
		TotalCells:      c.grid.Len(),
	}
}
