package pathfinding

// Movement cost values. Costs scale the 10/14 step weights of the wavefront
// expansion, so CostImpassable must stay far above any sum of walkable costs
// that could appear on a real path; it is a terminal sentinel, never a "very
// expensive" cell.
const (
	CostWalkable   uint8 = 1
	CostImpassable uint8 = 255
)

// CostField is the mutable per-cell movement cost map. It is the only field
// structure an external actor (terrain editing) writes to; every mutation is
// observed by the next integration recompute, there is no change log.
type CostField struct {
	grid  *Grid
	cells []uint8
}

// NewCostField creates a fully walkable cost field sized to the grid.
func NewCostField(grid *Grid) *CostField {
	f := &CostField{grid: grid, cells: make([]uint8, grid.Len())}
	f.Reset()
	return f
}

// Grid returns the grid this field was built on.
func (f *CostField) Grid() *Grid { return f.grid }

// Reset restores every cell to the baseline walkable cost.
func (f *CostField) Reset() {
	for i := range f.cells {
		f.cells[i] = CostWalkable
	}
}

// SetCost stores the cost for one cell. An out-of-range index is a
// programming error and panics; terrain code must convert world positions
// through Grid.CellIndex, which always yields a valid index. Silently
// clamping here masked real obstacle-placement bugs in the past.
func (f *CostField) SetCost(index int, cost uint8) {
	f.cells[index] = cost
}

// GetCost returns the stored cost for one cell, panicking on an
// out-of-range index for the same reason SetCost does.
func (f *CostField) GetCost(index int) uint8 {
	return f.cells[index]
}

// SetRectCost applies a cost to every cell of a rectangle given in cell
// coordinates, inclusive. The rectangle is clamped to the grid.
func (f *CostField) SetRectCost(minCol, minRow, maxCol, maxRow int, cost uint8) {
	if minCol < 0 {
		minCol = 0
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxCol >= f.grid.Columns() {
		maxCol = f.grid.Columns() - 1
	}
	if maxRow >= f.grid.Rows() {
		maxRow = f.grid.Rows() - 1
	}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			f.SetCost(f.grid.IndexOf(col, row), cost)
		}
	}
}

// SetRadiusCost applies a cost to every cell whose center lies within radius
// cells of the center cell, for carving or healing round obstacles.
func (f *CostField) SetRadiusCost(centerIndex, radius int, cost uint8) {
	cc, cr := f.grid.CellCoords(centerIndex)
	r2 := radius * radius
	for drow := -radius; drow <= radius; drow++ {
		for dcol := -radius; dcol <= radius; dcol++ {
			if dcol*dcol+drow*drow > r2 {
				continue
			}
			col, row := cc+dcol, cr+drow
			if f.grid.Contains(col, row) {
				f.SetCost(f.grid.IndexOf(col, row), cost)
			}
		}
	}
}
