package gridmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind classifies a map cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindWall
	KindMine
	KindGenerator
	KindAltar
	KindAgent
)

// Color of a mine/generator tag. ColorNone covers uncolored tags and
// every non-conversion cell.
type Color int

const (
	ColorNone Color = iota
	ColorRed
	ColorBlue
	ColorGreen
)

// AllColors is the closed set of colors a colored economy can use, in
// deterministic order.
var AllColors = []Color{ColorRed, ColorBlue, ColorGreen}

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	default:
		return "none"
	}
}

// ParseTag maps a raw tile tag to its cell kind and color. Unknown tags
// are walkable-empty.
func ParseTag(tag string) (Kind, Color) {
	switch tag {
	case "wall":
		return KindWall, ColorNone
	case "mine":
		return KindMine, ColorNone
	case "mine.red":
		return KindMine, ColorRed
	case "mine.blue":
		return KindMine, ColorBlue
	case "mine.green":
		return KindMine, ColorGreen
	case "generator":
		return KindGenerator, ColorNone
	case "generator.red":
		return KindGenerator, ColorRed
	case "generator.blue":
		return KindGenerator, ColorBlue
	case "generator.green":
		return KindGenerator, ColorGreen
	case "altar":
		return KindAltar, ColorNone
	case "agent.agent":
		return KindAgent, ColorNone
	default:
		return KindEmpty, ColorNone
	}
}

// Grid is an immutable rectangular tile map. Mutation after construction
// is not supported; accessors only.
type Grid struct {
	rows   [][]string
	width  int
	height int
}

// FromRows builds a Grid from row-major tile tags. All rows must have the
// same length.
func FromRows(rows [][]string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map: empty")
	}
	w := len(rows[0])
	if w == 0 {
		return nil, fmt.Errorf("map: empty row 0")
	}
	for i, r := range rows {
		if len(r) != w {
			return nil, fmt.Errorf("map: ragged row %d: len=%d want=%d", i, len(r), w)
		}
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	return &Grid{rows: cp, width: w, height: len(rows)}, nil
}

// Load reads a YAML 2D string array from path.
func Load(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Tag returns the raw tag at (x, y) with x as the column index.
func (g *Grid) Tag(x, y int) string { return g.rows[y][x] }

// At returns the classified cell at (x, y).
func (g *Grid) At(x, y int) (Kind, Color) { return ParseTag(g.rows[y][x]) }

// Colors reports which colors appear on mine/generator tags, in
// AllColors order. Empty means the map runs an uncolored economy.
func (g *Grid) Colors() []Color {
	seen := map[Color]bool{}
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			kind, color := g.At(x, y)
			if color == ColorNone {
				continue
			}
			if kind == KindMine || kind == KindGenerator {
				seen[color] = true
			}
		}
	}
	out := make([]Color, 0, len(seen))
	for _, c := range AllColors {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}
