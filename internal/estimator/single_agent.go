package estimator

import (
	"gridbound.ai/internal/envconf"
	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/regions"
)

// Moving a unit into a node costs one timestep per unit.
const depositCostPerUnit = 1

// singleAgentBound is the finite-horizon latency model: one agent runs
// its best color's conversion cycle greedily under the time and
// inventory budgets, and the result is multiplied by the region's agent
// count. Contention between the region's agents is ignored, color mixing
// is not modeled; this is a deliberate upper-bound heuristic, not a
// tight estimate.
func singleAgentBound(r *regions.EnclosedSpace, cfg *envconf.Config) float64 {
	best := 0.0
	for _, color := range cfg.RunColors {
		if v := singleAgentRun(r, cfg, color); v > best {
			best = v
		}
	}
	return best * float64(len(r.Agents))
}

// walkState is one agent's holdings during the phase walk. Carried
// resources occupy pack slots; stock sitting inside a node after a
// partial withdrawal occupies none, is never re-deposited, and still
// counts toward the final holdings.
type walkState struct {
	timeLeft int
	free     int // open pack slots

	ore       int // carried
	batteries int // carried
	hearts    int

	oreAtGenerator   int
	batteriesAtAltar int
}

// travel consumes a leg; false aborts the walk.
func (s *walkState) travel(dist float64) bool {
	d := int(dist)
	if s.timeLeft < d {
		return false
	}
	s.timeLeft -= d
	return true
}

func singleAgentRun(r *regions.EnclosedSpace, cfg *envconf.Config, color gridmap.Color) float64 {
	d := AnalyzeDistances(r, color)
	if !d.Complete() {
		return 0
	}

	mine := cfg.Mine[color]
	gen := cfg.Generator[color]
	altar := cfg.Altar
	heartCost := altar.InputBattery
	if heartCost <= 0 {
		heartCost = 1
	}

	s := walkState{timeLeft: cfg.MaxTimesteps, free: cfg.InventoryLimit}

	for s.timeLeft > 0 {
		// Phase 1: altar -> mine.
		if !s.travel(d.AltarToMine) {
			break
		}

		// Phase 2: harvest ore, one unit per cooldown+1 timesteps, up to
		// the open pack slots. Truncation under time pressure ends the walk.
		perUnit := mine.Cooldown + 1
		n := s.free
		if byTime := s.timeLeft / perUnit; byTime < n {
			n = byTime
		}
		if n <= 0 {
			break
		}
		s.ore += n
		s.free -= n
		s.timeLeft -= n * perUnit

		// Phase 3: mine -> generator.
		if !s.travel(d.MineToGenerator) {
			break
		}

		// Phase 4: deposit carried ore into the generator. Only carried
		// units move; each frees the slot it occupied.
		deposited := s.ore
		if byTime := s.timeLeft / depositCostPerUnit; byTime < deposited {
			deposited = byTime
		}
		if deposited <= 0 {
			break
		}
		s.ore -= deposited
		s.free += deposited
		s.timeLeft -= deposited * depositCostPerUnit
		s.oreAtGenerator += deposited

		// Phase 5: withdraw batteries (1:1 with generator ore stock),
		// batched by the generator's max output with a cooldown between
		// batches. Withdrawn units take pack slots; the rest stays in the
		// generator.
		want := s.oreAtGenerator
		if want > s.free {
			want = s.free
		}
		got := batchedWithdraw(want, gen.MaxOutput, gen.Cooldown, &s.timeLeft)
		s.batteries += got
		s.free -= got
		s.oreAtGenerator -= got
		if got == 0 {
			break
		}

		// Phase 6: generator -> altar.
		if !s.travel(d.GeneratorToAltar) {
			break
		}

		// Phase 7: deposit carried batteries.
		fed := s.batteries
		if byTime := s.timeLeft / depositCostPerUnit; byTime < fed {
			fed = byTime
		}
		if fed <= 0 {
			break
		}
		s.batteries -= fed
		s.free += fed
		s.timeLeft -= fed * depositCostPerUnit
		s.batteriesAtAltar += fed

		// Phase 8: withdraw hearts. Each heart burns heartCost batteries
		// from the altar stock and takes one pack slot; unconverted
		// batteries stay in the altar.
		wantHearts := s.batteriesAtAltar / heartCost
		if wantHearts > s.free {
			wantHearts = s.free
		}
		gotHearts := batchedWithdraw(wantHearts, altar.MaxOutput, altar.Cooldown, &s.timeLeft)
		s.hearts += gotHearts
		s.free -= gotHearts
		s.batteriesAtAltar -= gotHearts * heartCost
		if gotHearts == 0 {
			break
		}
	}

	// Node stock is retained, not lost.
	return float64(s.ore+s.oreAtGenerator)*cfg.Rewards.Ore[color] +
		float64(s.batteries+s.batteriesAtAltar)*cfg.Rewards.Battery +
		float64(s.hearts)*cfg.Rewards.Heart
}

// batchedWithdraw models pulling units out of a conversion node: each
// withdrawal action moves up to maxOutput units in one timestep, and
// every action except the last is followed by the node's cooldown.
// Returns the units actually withdrawn before time ran out.
func batchedWithdraw(units, maxOutput, cooldown int, timeLeft *int) int {
	if units <= 0 || maxOutput <= 0 {
		return 0
	}
	got := 0
	batches := (units + maxOutput - 1) / maxOutput
	for i := 0; i < batches; i++ {
		if *timeLeft < 1 {
			break
		}
		*timeLeft--
		take := maxOutput
		if rem := units - got; take > rem {
			take = rem
		}
		got += take
		if i < batches-1 {
			if *timeLeft < cooldown {
				break
			}
			*timeLeft -= cooldown
		}
	}
	return got
}
