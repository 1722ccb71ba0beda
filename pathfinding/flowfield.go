package pathfinding

import (
	"fmt"
	"math"
)

// FlowField stores one normalized direction vector per cell, pointing toward
// the neighbor with the lowest integration value. The goal cell, unreachable
// cells and local plateaus store the zero vector. It is a pure function of
// the integration field snapshot it was generated from.
type FlowField struct {
	grid     *Grid
	vectors  []Vec2
	diagonal bool
}

// NewFlowField creates an all-zero flow field sized to the grid.
func NewFlowField(grid *Grid, diagonal bool) *FlowField {
	return &FlowField{
		grid:     grid,
		vectors:  make([]Vec2, grid.Len()),
		diagonal: diagonal,
	}
}

// Grid returns the grid this field was built on.
func (f *FlowField) Grid() *Grid { return f.grid }

// Direction returns the stored unit vector for the cell containing the world
// position, or the zero vector for goal and unreachable cells. This is the
// per-agent read path, one array lookup per call.
func (f *FlowField) Direction(worldX, worldY float64) Vec2 {
	return f.vectors[f.grid.CellIndex(worldX, worldY)]
}

// VectorAt returns the stored vector for a cell index. Out-of-range indices
// panic.
func (f *FlowField) VectorAt(index int) Vec2 {
	return f.vectors[index]
}

// Generate overwrites the whole vector buffer by steepest descent over the
// integration field. The connectivity mode must match the one the
// integration field was computed with, and the same cost field must be
// passed so diagonal vectors obey the corner-cutting rule.
//
// Tie-break, kept deterministic so recomputes are reproducible: the strictly
// lowest neighbor value wins; among equals, the neighbor whose direction
// deviates least from the straight line to the nearest goal cell; if that
// also ties, the fixed enumeration order N, E, S, W, NE, SE, SW, NW.
func (f *FlowField) Generate(integration *IntegrationField, costs *CostField) error {
	if integration.Grid().Len() != f.grid.Len() {
		return fmt.Errorf("pathfinding: integration field has %d cells, flow field has %d", integration.Grid().Len(), f.grid.Len())
	}
	if integration.Diagonal() != f.diagonal {
		return fmt.Errorf("pathfinding: connectivity mismatch, integration diagonal=%v flow diagonal=%v", integration.Diagonal(), f.diagonal)
	}

	dirCount := dirCardinalCount
	if f.diagonal {
		dirCount = len(dirOffsets)
	}
	columns := f.grid.Columns()
	rows := f.grid.Rows()
	goals := integration.Goals()

	for index := range f.vectors {
		f.vectors[index] = Vec2{}

		value := integration.Value(index)
		if value == Unreachable || value == 0 {
			continue // Unreachable cell or a goal cell
		}

		col := index % columns
		row := index / columns
		cx, cy := f.grid.CellCenter(index)
		gx, gy := f.nearestGoalDir(cx, cy, goals)

		bestDir := -1
		bestValue := value
		bestDot := math.Inf(-1)

		for d := 0; d < dirCount; d++ {
			nc, nr := col+dirOffsets[d][0], row+dirOffsets[d][1]
			if nc < 0 || nc >= columns || nr < 0 || nr >= rows {
				continue
			}
			if d >= dirCardinalCount && !f.grid.diagonalOpen(costs, col, row, dirOffsets[d][0], dirOffsets[d][1]) {
				continue
			}
			nValue := integration.Value(nr*columns + nc)
			if nValue > bestValue {
				continue
			}
			if nValue < bestValue {
				bestValue = nValue
				bestDir = d
				bestDot = dirDots[d][0]*gx + dirDots[d][1]*gy
				continue
			}
			if bestDir < 0 {
				continue // Equal to the cell's own value, not an improvement
			}
			if dot := dirDots[d][0]*gx + dirDots[d][1]*gy; dot > bestDot {
				bestDir = d
				bestDot = dot
			}
		}

		if bestDir < 0 {
			continue // Local plateau, every neighbor equal or worse
		}

		nIndex := f.grid.IndexOf(col+dirOffsets[bestDir][0], row+dirOffsets[bestDir][1])
		nx, ny := f.grid.CellCenter(nIndex)
		dx, dy := nx-cx, ny-cy
		norm := math.Sqrt(dx*dx + dy*dy)
		f.vectors[index] = Vec2{X: dx / norm, Y: dy / norm}
	}
	return nil
}

// nearestGoalDir returns the unit vector from (cx, cy) toward the closest
// goal cell center, used only to break integration-value ties.
func (f *FlowField) nearestGoalDir(cx, cy float64, goals []int) (float64, float64) {
	bestDist := math.Inf(1)
	var bx, by float64
	for _, goal := range goals {
		gx, gy := f.grid.CellCenter(goal)
		dx, dy := gx-cx, gy-cy
		dist := dx*dx + dy*dy
		if dist < bestDist {
			bestDist = dist
			bx, by = dx, dy
		}
	}
	norm := math.Sqrt(bx*bx + by*by)
	if norm == 0 {
		return 0, 0
	}
	return bx / norm, by / norm
}

// Unit direction vectors matching dirOffsets, for the angular tie-break.
var dirDots = [8][2]float64{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{math.Sqrt2 / 2, -math.Sqrt2 / 2}, {math.Sqrt2 / 2, math.Sqrt2 / 2},
	{-math.Sqrt2 / 2, math.Sqrt2 / 2}, {-math.Sqrt2 / 2, -math.Sqrt2 / 2},
}
