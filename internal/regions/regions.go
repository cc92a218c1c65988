// Package regions partitions a tile map into its maximal 4-connected
// non-wall components. Walls are indestructible barriers and never join
// a region.
package regions

import (
	"gridbound.ai/internal/gridmap"
)

// Coord is a cell position; X is the column index.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanDist between two cells.
func ManhattanDist(a, b Coord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// EnclosedSpace is one connected component with its classified object
// inventory. Immutable after Partition returns it.
type EnclosedSpace struct {
	Index int

	MinX, MinY, MaxX, MaxY int

	Mines      map[gridmap.Color][]Coord
	Generators map[gridmap.Color][]Coord
	Altars     []Coord
	Agents     []Coord

	// Cells lists every member coordinate, in visit order.
	Cells []Coord
}

// Width of the bounding box. Reporting convenience only.
func (r *EnclosedSpace) Width() int { return r.MaxX - r.MinX + 1 }

// Height of the bounding box.
func (r *EnclosedSpace) Height() int { return r.MaxY - r.MinY + 1 }

// MineCount over all colors.
func (r *EnclosedSpace) MineCount() int {
	n := 0
	for _, cs := range r.Mines {
		n += len(cs)
	}
	return n
}

// GeneratorCount over all colors.
func (r *EnclosedSpace) GeneratorCount() int {
	n := 0
	for _, cs := range r.Generators {
		n += len(cs)
	}
	return n
}

// Partition flood-fills the grid into disjoint enclosed spaces. The fill
// is iterative (explicit stack) so arbitrarily large open areas cannot
// overflow the call stack, and seeds in raster-scan order so region
// indices are deterministic for identical input.
func Partition(g *gridmap.Grid) []*EnclosedSpace {
	w, h := g.Width(), g.Height()
	visited := make([]bool, w*h)

	var out []*EnclosedSpace
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] {
				continue
			}
			if kind, _ := g.At(x, y); kind == gridmap.KindWall {
				continue
			}
			r := fill(g, visited, Coord{x, y})
			r.Index = len(out)
			out = append(out, r)
		}
	}
	return out
}

func fill(g *gridmap.Grid, visited []bool, seed Coord) *EnclosedSpace {
	w, h := g.Width(), g.Height()
	r := &EnclosedSpace{
		MinX: seed.X, MinY: seed.Y, MaxX: seed.X, MaxY: seed.Y,
		Mines:      map[gridmap.Color][]Coord{},
		Generators: map[gridmap.Color][]Coord{},
	}

	stack := []Coord{seed}
	visited[seed.Y*w+seed.X] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		r.absorb(g, c)

		for _, n := range [4]Coord{{c.X + 1, c.Y}, {c.X - 1, c.Y}, {c.X, c.Y + 1}, {c.X, c.Y - 1}} {
			if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h {
				continue
			}
			if visited[n.Y*w+n.X] {
				continue
			}
			if kind, _ := g.At(n.X, n.Y); kind == gridmap.KindWall {
				continue
			}
			visited[n.Y*w+n.X] = true
			stack = append(stack, n)
		}
	}
	return r
}

func (r *EnclosedSpace) absorb(g *gridmap.Grid, c Coord) {
	r.Cells = append(r.Cells, c)
	if c.X < r.MinX {
		r.MinX = c.X
	}
	if c.X > r.MaxX {
		r.MaxX = c.X
	}
	if c.Y < r.MinY {
		r.MinY = c.Y
	}
	if c.Y > r.MaxY {
		r.MaxY = c.Y
	}

	kind, color := g.At(c.X, c.Y)
	switch kind {
	case gridmap.KindMine:
		r.Mines[color] = append(r.Mines[color], c)
	case gridmap.KindGenerator:
		r.Generators[color] = append(r.Generators[color], c)
	case gridmap.KindAltar:
		r.Altars = append(r.Altars, c)
	case gridmap.KindAgent:
		r.Agents = append(r.Agents, c)
	}
}
