package pathfinding

import (
	"errors"
	"fmt"
	"math"
)

// Unreachable marks cells with no walkable path to any goal. It is the
// maximum representable distance, strictly above any accumulated cost a full
// worst-case traversal of the grid can produce, so "unreachable" can never
// be confused with "very far but reachable".
const Unreachable uint32 = math.MaxUint32

// ErrNoGoals is returned when a recompute is requested with an empty goal
// set. At least one goal cell must be seeded.
var ErrNoGoals = errors.New("pathfinding: goal set is empty")

// IntegrationField holds the accumulated cost from every cell to the nearest
// goal, recomputed in full by wavefront expansion (Dijkstra over the grid
// graph) on every goal or obstacle change. It is never patched in place.
type IntegrationField struct {
	grid     *Grid
	values   []uint32
	goals    []int
	diagonal bool
	queue    *PriorityQueue
}

// NewIntegrationField creates an all-unreachable integration field.
// diagonal selects 8-connected expansion; it must match the flow field this
// field feeds, or the derived vectors imply illegal corner cuts.
func NewIntegrationField(grid *Grid, diagonal bool) *IntegrationField {
	f := &IntegrationField{
		grid:     grid,
		values:   make([]uint32, grid.Len()),
		diagonal: diagonal,
		queue:    NewPriorityQueue(grid.Len()),
	}
	for i := range f.values {
		f.values[i] = Unreachable
	}
	return f
}

// Grid returns the grid this field was built on.
func (f *IntegrationField) Grid() *Grid { return f.grid }

// Diagonal reports whether the field expands with 8-connected neighbors.
func (f *IntegrationField) Diagonal() bool { return f.diagonal }

// Goals returns the goal cells of the last recompute.
func (f *IntegrationField) Goals() []int { return f.goals }

// Value returns the accumulated cost at a cell index, Unreachable if no
// walkable path to any goal exists. Out-of-range indices panic.
func (f *IntegrationField) Value(index int) uint32 {
	return f.values[index]
}

// ValueAt returns the accumulated cost at a world position, clamped to the
// arena like every world-space lookup.
func (f *IntegrationField) ValueAt(worldX, worldY float64) uint32 {
	return f.values[f.grid.CellIndex(worldX, worldY)]
}

// Compute rebuilds the whole field: reset every cell to Unreachable, seed
// all goal cells at zero, then expand the wavefront in priority order until
// the queue drains. Seeding multiple goals yields distance-to-nearest-goal;
// it is the single-goal algorithm with more than one source.
//
// The queue may hold duplicate entries for a cell; a popped entry whose
// priority exceeds the cell's stored value is stale (a cheaper path was
// already processed) and is discarded. A goal sitting on an impassable cell
// is not special-cased: it seeds at zero and the caller is responsible for
// not placing goals on obstacles.
func (f *IntegrationField) Compute(costs *CostField, goals []int) error {
	if costs.Grid().Len() != f.grid.Len() {
		return fmt.Errorf("pathfinding: cost field has %d cells, integration field has %d", costs.Grid().Len(), f.grid.Len())
	}
	if len(goals) == 0 {
		return ErrNoGoals
	}

	for i := range f.values {
		f.values[i] = Unreachable
	}
	f.goals = append(f.goals[:0], goals...)

	f.queue.Reset()
	for _, goal := range goals {
		f.values[goal] = 0
		f.queue.Push(goal, 0)
	}

	dirCount := dirCardinalCount
	if f.diagonal {
		dirCount = len(dirOffsets)
	}
	columns := f.grid.Columns()
	rows := f.grid.Rows()

	for f.queue.Len() > 0 {
		index, priority := f.queue.Pop()
		if priority > f.values[index] {
			continue // Stale entry, a cheaper path was already expanded
		}

		col := index % columns
		row := index / columns

		for d := 0; d < dirCount; d++ {
			nc, nr := col+dirOffsets[d][0], row+dirOffsets[d][1]
			if nc < 0 || nc >= columns || nr < 0 || nr >= rows {
				continue
			}
			nIndex := nr*columns + nc
			nCost := costs.GetCost(nIndex)
			if nCost >= CostImpassable {
				continue
			}
			if d >= dirCardinalCount && !f.grid.diagonalOpen(costs, col, row, dirOffsets[d][0], dirOffsets[d][1]) {
				continue
			}

			candidate := f.values[index] + dirScales[d]*uint32(nCost)
			if candidate < f.values[nIndex] {
				f.values[nIndex] = candidate
				f.queue.Push(nIndex, candidate)
			}
		}
	}
	return nil
}
