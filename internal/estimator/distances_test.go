package estimator

import (
	"math"
	"testing"

	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/regions"
)

func TestAnalyzeDistances_PairwiseMin(t *testing.T) {
	g, err := gridmap.FromRows([][]string{
		{"mine", "empty", "generator", "empty", "empty"},
		{"empty", "empty", "empty", "empty", "altar"},
		{"mine", "empty", "empty", "generator", "empty"},
	})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	rs := regions.Partition(g)
	if len(rs) != 1 {
		t.Fatalf("regions = %d, want 1", len(rs))
	}
	d := AnalyzeDistances(rs[0], gridmap.ColorNone)

	// mine(0,2) -> generator(3,2) = 3 beats every other pairing.
	if d.MineToGenerator != 3 {
		t.Fatalf("mine->generator = %v, want 3", d.MineToGenerator)
	}
	// generator(3,2) -> altar(4,1) = 2.
	if d.GeneratorToAltar != 2 {
		t.Fatalf("generator->altar = %v, want 2", d.GeneratorToAltar)
	}
	// altar(4,1) -> mine(0,2) = 5 vs mine(0,0) = 5; both 5.
	if d.AltarToMine != 5 {
		t.Fatalf("altar->mine = %v, want 5", d.AltarToMine)
	}
	if !d.Complete() {
		t.Fatalf("cycle should be complete")
	}
}

func TestAnalyzeDistances_MissingClassIsInfinite(t *testing.T) {
	g, err := gridmap.FromRows([][]string{
		{"mine", "empty", "altar"},
	})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	rs := regions.Partition(g)
	d := AnalyzeDistances(rs[0], gridmap.ColorNone)
	if !math.IsInf(d.MineToGenerator, 1) || !math.IsInf(d.GeneratorToAltar, 1) {
		t.Fatalf("missing generator should yield +Inf legs, got %+v", d)
	}
	if d.Complete() {
		t.Fatalf("cycle must not be complete without a generator")
	}
}

func TestAnalyzeDistances_ColorSeparation(t *testing.T) {
	g, err := gridmap.FromRows([][]string{
		{"mine.red", "generator.blue", "altar"},
	})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	rs := regions.Partition(g)
	red := AnalyzeDistances(rs[0], gridmap.ColorRed)
	if red.Complete() {
		t.Fatalf("red has no generator; cycle must be incomplete")
	}
	blue := AnalyzeDistances(rs[0], gridmap.ColorBlue)
	if blue.Complete() {
		t.Fatalf("blue has no mine; cycle must be incomplete")
	}
}
