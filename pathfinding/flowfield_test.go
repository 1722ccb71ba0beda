package pathfinding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// computeFields runs a full integration + flow pass over the given costs.
func computeFields(t *testing.T, g *Grid, costs *CostField, diagonal bool, goals ...int) (*IntegrationField, *FlowField) {
	t.Helper()
	integ := NewIntegrationField(g, diagonal)
	require.NoError(t, integ.Compute(costs, goals))
	flow := NewFlowField(g, diagonal)
	require.NoError(t, flow.Generate(integ, costs))
	return integ, flow
}

// followFlow walks cell to cell along the field from a start cell and
// returns the cell it settles on, or -1 if it exceeds maxSteps.
func followFlow(g *Grid, flow *FlowField, start, maxSteps int) int {
	cell := start
	for step := 0; step < maxSteps; step++ {
		v := flow.VectorAt(cell)
		if v.X == 0 && v.Y == 0 {
			return cell
		}
		cx, cy := g.CellCenter(cell)
		cell = g.CellIndex(cx+v.X*g.CellSize(), cy+v.Y*g.CellSize())
	}
	return -1
}

func TestFlowField_ConnectivityMismatch(t *testing.T) {
	g, costs := tenByTen(t)
	integ := NewIntegrationField(g, true)
	require.NoError(t, integ.Compute(costs, []int{0}))

	flow := NewFlowField(g, false)
	require.Error(t, flow.Generate(integ, costs))
}

func TestFlowField_UnitLength(t *testing.T) {
	g, costs := tenByTen(t)
	costs.SetRectCost(3, 3, 6, 4, CostImpassable)
	_, flow := computeFields(t, g, costs, true, g.IndexOf(8, 8))

	for i := 0; i < g.Len(); i++ {
		v := flow.VectorAt(i)
		if v.X == 0 && v.Y == 0 {
			continue
		}
		require.InDelta(t, 1.0, math.Hypot(v.X, v.Y), 1e-9, "cell %d", i)
	}
}

func TestFlowField_OpenField(t *testing.T) {
	g, costs := tenByTen(t)
	goal := g.IndexOf(5, 5)
	_, flow := computeFields(t, g, costs, true, goal)

	// Goal cell holds the zero vector.
	require.Equal(t, Vec2{}, flow.VectorAt(goal))

	// (0,0) heads down-right, straight at the goal.
	v := flow.VectorAt(g.IndexOf(0, 0))
	require.InDelta(t, math.Sqrt2/2, v.X, 1e-9)
	require.InDelta(t, math.Sqrt2/2, v.Y, 1e-9)

	// Directly above the goal the flow points straight down.
	v = flow.VectorAt(g.IndexOf(5, 2))
	require.InDelta(t, 0, v.X, 1e-9)
	require.InDelta(t, 1, v.Y, 1e-9)

	// Every cell walks to the goal.
	for i := 0; i < g.Len(); i++ {
		require.Equal(t, goal, followFlow(g, flow, i, 50), "cell %d", i)
	}
}

func TestFlowField_WallWithGap(t *testing.T) {
	g, costs := tenByTen(t)
	// Vertical wall at column 5, rows 0-8, one-cell gap at row 9.
	costs.SetRectCost(5, 0, 5, 8, CostImpassable)
	goal := g.IndexOf(8, 4)
	_, flow := computeFields(t, g, costs, true, goal)

	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < 5; col++ {
			start := g.IndexOf(col, row)

			// No vector on the left side may step into the wall.
			v := flow.VectorAt(start)
			require.False(t, v.X == 0 && v.Y == 0, "cell (%d,%d) stuck", col, row)
			cx, cy := g.CellCenter(start)
			next := g.CellIndex(cx+v.X*g.CellSize(), cy+v.Y*g.CellSize())
			require.Less(t, costs.GetCost(next), CostImpassable,
				"cell (%d,%d) points into the wall", col, row)

			// And every left-side cell still reaches the goal via the gap.
			require.Equal(t, goal, followFlow(g, flow, start, 100), "cell (%d,%d)", col, row)
		}
	}
}

func TestFlowField_EnclosedPocket(t *testing.T) {
	g, costs := tenByTen(t)
	costs.SetRectCost(4, 4, 6, 6, CostImpassable)
	costs.SetCost(g.IndexOf(5, 5), CostWalkable)
	integ, flow := computeFields(t, g, costs, true, g.IndexOf(0, 0))

	pocket := g.IndexOf(5, 5)
	require.Equal(t, Unreachable, integ.Value(pocket))
	require.Equal(t, Vec2{}, flow.VectorAt(pocket))
}

func TestFlowField_Determinism(t *testing.T) {
	g, costs := tenByTen(t)
	costs.SetRectCost(2, 5, 7, 5, CostImpassable)
	goals := []int{g.IndexOf(1, 8), g.IndexOf(8, 1)}

	_, a := computeFields(t, g, costs, true, goals...)
	_, b := computeFields(t, g, costs, true, goals...)
	require.Equal(t, a.vectors, b.vectors)
}

func TestFlowField_TieBreakFavorsGoalLine(t *testing.T) {
	// 4-connected open field, goal at (5,5). From (3,5) the only strictly
	// lower neighbor is E. From (3,4), E and S tie on integration value;
	// the geometric tie-break picks the one closer to the goal line, and
	// the result must be stable across recomputes.
	g, costs := tenByTen(t)
	goal := g.IndexOf(5, 5)
	_, flow := computeFields(t, g, costs, false, goal)

	v := flow.VectorAt(g.IndexOf(3, 5))
	require.Equal(t, Vec2{X: 1, Y: 0}, v)

	// E deviates less from the straight line to (5,5) than S does.
	tied := flow.VectorAt(g.IndexOf(3, 4))
	require.Equal(t, Vec2{X: 1, Y: 0}, tied)

	_, again := computeFields(t, g, costs, false, goal)
	require.Equal(t, tied, again.VectorAt(g.IndexOf(3, 4)))
}

func TestFlowField_DiagonalNeverCutsCorners(t *testing.T) {
	g, costs := tenByTen(t)
	// Walls at (5,4) and (4,5) leave (5,5) open but seal the diagonal
	// between (4,4) and (5,5): both orthogonals are solid.
	costs.SetCost(g.IndexOf(5, 4), CostImpassable)
	costs.SetCost(g.IndexOf(4, 5), CostImpassable)
	goal := g.IndexOf(9, 9)
	_, flow := computeFields(t, g, costs, true, goal)

	// (4,4) must route around the corner, never squeeze through it.
	v := flow.VectorAt(g.IndexOf(4, 4))
	require.False(t, v.X == 0 && v.Y == 0)
	require.False(t, v.X > 0 && v.Y > 0, "corner cut at (4,4): %+v", v)
}
