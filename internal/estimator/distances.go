package estimator

import (
	"math"

	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/regions"
)

// Distances holds the minimal Manhattan travel legs of one color's
// conversion cycle inside a region. A leg is +Inf when either endpoint
// class is absent; the cycle then cannot complete and the color yields
// zero throughput.
type Distances struct {
	MineToGenerator  float64
	GeneratorToAltar float64
	AltarToMine      float64
}

// Complete reports whether every leg of the cycle is traversable.
func (d Distances) Complete() bool {
	return !math.IsInf(d.MineToGenerator, 1) &&
		!math.IsInf(d.GeneratorToAltar, 1) &&
		!math.IsInf(d.AltarToMine, 1)
}

// AnalyzeDistances computes the three cycle legs for one color by
// exhaustive pairwise minimization. Object counts per region are small,
// so the quadratic scan is fine.
func AnalyzeDistances(r *regions.EnclosedSpace, color gridmap.Color) Distances {
	mines := r.Mines[color]
	gens := r.Generators[color]
	return Distances{
		MineToGenerator:  minPairDist(mines, gens),
		GeneratorToAltar: minPairDist(gens, r.Altars),
		AltarToMine:      minPairDist(r.Altars, mines),
	}
}

func minPairDist(from, to []regions.Coord) float64 {
	if len(from) == 0 || len(to) == 0 {
		return math.Inf(1)
	}
	best := math.MaxInt
	for _, a := range from {
		for _, b := range to {
			if d := regions.ManhattanDist(a, b); d < best {
				best = d
			}
		}
	}
	return float64(best)
}
