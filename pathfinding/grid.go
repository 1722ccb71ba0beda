// Package pathfinding implements shared flow-field navigation: a spatial grid,
// a per-cell movement cost map, a goal-distance integration field computed by
// priority-ordered wavefront expansion, and a derived direction-vector field.
// Any number of agents can then answer "which way to the objective" with a
// single array lookup per tick, regardless of crowd size.
package pathfinding

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Neighbor direction offsets in (column, row) order.
// Cardinals first (N, E, S, W), then diagonals (NE, SE, SW, NW); this
// enumeration order is the final tie-break when deriving flow vectors.
var dirOffsets = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// Step scale per direction: cardinal = 10, diagonal = 14 (≈10√2).
// The √2 scaling keeps the metric honest; without it the integration field
// is visibly biased toward diagonal routes.
var dirScales = [8]uint32{10, 10, 10, 10, 14, 14, 14, 14}

const dirCardinalCount = 4

// Grid is the immutable spatial decomposition of the arena. It is created
// once from the world extents and shared by reference between the cost,
// integration and flow fields; all per-cell buffers use Len() entries.
type Grid struct {
	cellSize       float64
	worldW, worldH float64
	columns, rows  int
}

// NewGrid derives grid dimensions from the world extents. Zero or negative
// extents or cell size are configuration errors and fail fast.
func NewGrid(worldW, worldH, cellSize float64) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("pathfinding: cell size must be positive, got %v", cellSize)
	}
	if worldW <= 0 || worldH <= 0 {
		return nil, fmt.Errorf("pathfinding: world extents must be positive, got %vx%v", worldW, worldH)
	}
	return &Grid{
		cellSize: cellSize,
		worldW:   worldW,
		worldH:   worldH,
		columns:  int(math.Ceil(worldW / cellSize)),
		rows:     int(math.Ceil(worldH / cellSize)),
	}, nil
}

func (g *Grid) Columns() int      { return g.columns }
func (g *Grid) Rows() int         { return g.rows }
func (g *Grid) CellSize() float64 { return g.cellSize }

// Len is the canonical length of every per-cell buffer built on this grid.
func (g *Grid) Len() int { return g.columns * g.rows }

// CellIndex converts a world position to a flat cell index. Out-of-bounds
// positions are clamped to the nearest edge cell, so the result is always a
// valid index; callers must not rely on this for hit-testing outside the
// arena.
func (g *Grid) CellIndex(worldX, worldY float64) int {
	col := int(math.Floor(worldX / g.cellSize))
	row := int(math.Floor(worldY / g.cellSize))
	if col < 0 {
		col = 0
	} else if col >= g.columns {
		col = g.columns - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.columns + col
}

// CellCoords returns the (column, row) pair for a flat index.
func (g *Grid) CellCoords(index int) (int, int) {
	return index % g.columns, index / g.columns
}

// IndexOf returns the flat index for a (column, row) pair. The pair must be
// in bounds; use Contains first when it may not be.
func (g *Grid) IndexOf(col, row int) int {
	return row*g.columns + col
}

// Contains reports whether the (column, row) pair is inside the grid.
func (g *Grid) Contains(col, row int) bool {
	return col >= 0 && col < g.columns && row >= 0 && row < g.rows
}

// CellCenter returns the world-space center of a cell.
func (g *Grid) CellCenter(index int) (float64, float64) {
	col, row := g.CellCoords(index)
	return float64(col)*g.cellSize + g.cellSize/2, float64(row)*g.cellSize + g.cellSize/2
}

// Neighbors4 appends the valid 4-connected neighbor indices of a cell to buf
// and returns the extended slice. Cells outside the grid are omitted, no
// wraparound.
func (g *Grid) Neighbors4(index int, buf []int) []int {
	col, row := g.CellCoords(index)
	for d := 0; d < dirCardinalCount; d++ {
		nc, nr := col+dirOffsets[d][0], row+dirOffsets[d][1]
		if g.Contains(nc, nr) {
			buf = append(buf, g.IndexOf(nc, nr))
		}
	}
	return buf
}

// Neighbors8 appends the valid 8-connected neighbor indices of a cell to buf.
// A diagonal neighbor is excluded when both orthogonal cells adjacent to it
// and the source are impassable in costs, so the flow field never implies
// movement through a solid corner. The cost lookup is an explicit parameter
// rather than grid state to keep the grid immutable and testable alone.
func (g *Grid) Neighbors8(index int, costs *CostField, buf []int) []int {
	col, row := g.CellCoords(index)
	for d := 0; d < len(dirOffsets); d++ {
		nc, nr := col+dirOffsets[d][0], row+dirOffsets[d][1]
		if !g.Contains(nc, nr) {
			continue
		}
		if d >= dirCardinalCount && !g.diagonalOpen(costs, col, row, dirOffsets[d][0], dirOffsets[d][1]) {
			continue
		}
		buf = append(buf, g.IndexOf(nc, nr))
	}
	return buf
}

// diagonalOpen is the corner-cutting rule: a diagonal step from (col, row) is
// allowed only if at least one of the two orthogonal cells it passes between
// is not impassable. Both orthogonals are in bounds whenever the diagonal
// target is.
func (g *Grid) diagonalOpen(costs *CostField, col, row, dcol, drow int) bool {
	return costs.GetCost(g.IndexOf(col+dcol, row)) < CostImpassable ||
		costs.GetCost(g.IndexOf(col, row+drow)) < CostImpassable
}
