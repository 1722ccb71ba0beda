// Command cli renders the navigation fields as ASCII for quick inspection:
// the cost field, the integration wavefront, the flow arrows, and an
// animated agent following the field from a start cell to the goal.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"siegefield-server/pathfinding"
)

var arrowGlyphs = map[[2]int]string{
	{0, -1}: "↑", {1, 0}: "→", {0, 1}: "↓", {-1, 0}: "←",
	{1, -1}: "↗", {1, 1}: "↘", {-1, 1}: "↙", {-1, -1}: "↖",
}

func main() {
	var (
		cols      = flag.Int("cols", 40, "grid columns")
		rows      = flag.Int("rows", 20, "grid rows")
		obstacles = flag.Int("obstacles", 12, "number of random wall rectangles")
		goalCol   = flag.Int("goal-col", -1, "goal column (default: center)")
		goalRow   = flag.Int("goal-row", -1, "goal row (default: center)")
		startCol  = flag.Int("start-col", 0, "agent start column")
		startRow  = flag.Int("start-row", 0, "agent start row")
		diagonal  = flag.Bool("diagonal", true, "allow diagonal movement")
		mode      = flag.String("mode", "flow", "render mode: cost, integration, flow, walk")
		seed      = flag.Int64("seed", 0, "obstacle seed (0: time-based)")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	cellSize := 10.0
	grid, err := pathfinding.NewGrid(float64(*cols)*cellSize, float64(*rows)*cellSize, cellSize)
	if err != nil {
		fmt.Println("grid:", err)
		os.Exit(1)
	}
	if *goalCol < 0 {
		*goalCol = *cols / 2
	}
	if *goalRow < 0 {
		*goalRow = *rows / 2
	}
	if !grid.Contains(*goalCol, *goalRow) || !grid.Contains(*startCol, *startRow) {
		fmt.Println("goal or start out of bounds")
		os.Exit(1)
	}

	costs := pathfinding.NewCostField(grid)
	scatterWalls(rng, grid, costs, *obstacles, *goalCol, *goalRow, *startCol, *startRow)

	integ := pathfinding.NewIntegrationField(grid, *diagonal)
	goal := grid.IndexOf(*goalCol, *goalRow)
	if err := integ.Compute(costs, []int{goal}); err != nil {
		fmt.Println("integration:", err)
		os.Exit(1)
	}
	flow := pathfinding.NewFlowField(grid, *diagonal)
	if err := flow.Generate(integ, costs); err != nil {
		fmt.Println("flow:", err)
		os.Exit(1)
	}

	switch *mode {
	case "cost":
		renderCost(grid, costs, goal)
	case "integration":
		renderIntegration(grid, costs, integ, goal)
	case "flow":
		renderFlow(grid, costs, flow, goal)
	case "walk":
		walk(grid, costs, flow, goal, grid.IndexOf(*startCol, *startRow))
	default:
		fmt.Printf("unknown mode %q\n", *mode)
		os.Exit(1)
	}
}

// scatterWalls places random wall rectangles, keeping the goal and start
// cells clear.
func scatterWalls(rng *rand.Rand, g *pathfinding.Grid, costs *pathfinding.CostField, n, goalCol, goalRow, startCol, startRow int) {
	maxW := g.Columns()/8 + 1
	maxH := g.Rows()/8 + 1
	for placed, attempts := 0, 0; placed < n && attempts < n*10; attempts++ {
		minCol := rng.Intn(g.Columns())
		minRow := rng.Intn(g.Rows())
		maxColR := minCol + rng.Intn(maxW)
		maxRowR := minRow + rng.Intn(maxH)
		if inRect(goalCol, goalRow, minCol, minRow, maxColR, maxRowR) ||
			inRect(startCol, startRow, minCol, minRow, maxColR, maxRowR) {
			continue
		}
		costs.SetRectCost(minCol, minRow, maxColR, maxRowR, pathfinding.CostImpassable)
		placed++
	}
}

func inRect(col, row, minCol, minRow, maxCol, maxRow int) bool {
	return col >= minCol && col <= maxCol && row >= minRow && row <= maxRow
}

func renderCost(g *pathfinding.Grid, costs *pathfinding.CostField, goal int) {
	render(g, goal, func(index int) string {
		c := costs.GetCost(index)
		switch {
		case c >= pathfinding.CostImpassable:
			return "●"
		case c == pathfinding.CostWalkable:
			return "."
		default:
			return fmt.Sprintf("%d", c%10)
		}
	})
}

func renderIntegration(g *pathfinding.Grid, costs *pathfinding.CostField, integ *pathfinding.IntegrationField, goal int) {
	render(g, goal, func(index int) string {
		if costs.GetCost(index) >= pathfinding.CostImpassable {
			return "●"
		}
		v := integ.Value(index)
		if v == pathfinding.Unreachable {
			return "?"
		}
		// Last digit of the wavefront distance makes the contours visible.
		return fmt.Sprintf("%d", (v/10)%10)
	})
}

func renderFlow(g *pathfinding.Grid, costs *pathfinding.CostField, flow *pathfinding.FlowField, goal int) {
	render(g, goal, func(index int) string {
		if costs.GetCost(index) >= pathfinding.CostImpassable {
			return "●"
		}
		v := flow.VectorAt(index)
		if v.X == 0 && v.Y == 0 {
			return "?"
		}
		return arrowGlyphs[[2]int{sign(v.X), sign(v.Y)}]
	})
}

// walk animates one agent following the field cell to cell.
func walk(g *pathfinding.Grid, costs *pathfinding.CostField, flow *pathfinding.FlowField, goal, start int) {
	cell := start
	trail := map[int]bool{}
	for step := 0; step < g.Len(); step++ {
		fmt.Print("\033[2J\033[H")
		fmt.Printf("Step %d\n", step)
		render(g, goal, func(index int) string {
			switch {
			case index == cell:
				return "X"
			case costs.GetCost(index) >= pathfinding.CostImpassable:
				return "●"
			case trail[index]:
				return "+"
			default:
				return "."
			}
		})
		if cell == goal {
			fmt.Println("Goal reached in", step, "steps.")
			return
		}
		v := flow.VectorAt(cell)
		if v.X == 0 && v.Y == 0 {
			fmt.Println("Agent stuck: cell cannot reach the goal.")
			return
		}
		trail[cell] = true
		cx, cy := g.CellCenter(cell)
		cell = g.CellIndex(cx+v.X*g.CellSize(), cy+v.Y*g.CellSize())
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Println("Walk did not settle.")
}

func render(g *pathfinding.Grid, goal int, glyph func(index int) string) {
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Columns(); col++ {
			index := g.IndexOf(col, row)
			if index == goal {
				fmt.Print("E ")
				continue
			}
			fmt.Print(glyph(index), " ")
		}
		fmt.Println()
	}
}

func sign(v float64) int {
	switch {
	case v > 1e-9:
		return 1
	case v < -1e-9:
		return -1
	default:
		return 0
	}
}
