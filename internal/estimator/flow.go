package estimator

import (
	"gridbound.ai/internal/envconf"
	"gridbound.ai/internal/regions"
)

// flowRateBound is the infinite-horizon throughput model: every pipeline
// stage runs saturated, travel and inventory are ignored, and the
// bottleneck stage caps heart production. Colors are summed here, unlike
// the single-agent model's max-over-colors; the asymmetry is inherited
// behavior (see DESIGN.md) and deliberately left as-is.
func flowRateBound(r *regions.EnclosedSpace, cfg *envconf.Config) float64 {
	total := 0.0
	for _, color := range cfg.RunColors {
		mines := len(r.Mines[color])
		gens := len(r.Generators[color])
		altars := len(r.Altars)
		if mines == 0 || gens == 0 || altars == 0 {
			continue
		}

		mine := cfg.Mine[color]
		gen := cfg.Generator[color]
		altar := cfg.Altar
		heartCost := altar.InputBattery
		if heartCost <= 0 {
			heartCost = 1
		}

		oreRate := float64(mines) / float64(mine.Cooldown+1)

		batteryCycle := float64(gen.MaxOutput*gen.InputOre + gen.Cooldown + 1)
		batteryRate := float64(gens*gen.MaxOutput) / batteryCycle

		heartCycle := float64(altar.MaxOutput*heartCost + altar.Cooldown + 1)
		heartRate := float64(altars*altar.MaxOutput) / heartCycle

		// Upstream rates in heart equivalents (1:1 ore/battery convention).
		bottleneck := minRate(oreRate/float64(heartCost), batteryRate/float64(heartCost), heartRate)
		total += bottleneck * float64(cfg.MaxTimesteps) * cfg.Rewards.Heart
	}
	return total
}

func minRate(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
