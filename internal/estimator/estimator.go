// Package estimator computes a conservative upper bound on the total
// reward a grid-world resource economy can produce within a fixed time
// horizon. Each disconnected map region is bounded twice, by a greedy
// time-and-inventory-constrained single-agent walk and by a steady-state
// pipeline-throughput model; the tighter of the two wins, and regions
// sum because they can never interact.
package estimator

import (
	"fmt"
	"strings"
	"sync"

	"gridbound.ai/internal/envconf"
	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/regions"
)

// Estimator is a pure function of its construction inputs: the config
// and grid are never mutated, regions are computed once, and repeated
// queries return identical results.
type Estimator struct {
	cfg     *envconf.Config
	grid    *gridmap.Grid
	regions []*regions.EnclosedSpace
}

func New(cfg *envconf.Config, grid *gridmap.Grid) *Estimator {
	return &Estimator{
		cfg:     cfg,
		grid:    grid,
		regions: regions.Partition(grid),
	}
}

// Regions exposes the computed partition (read-only).
func (e *Estimator) Regions() []*regions.EnclosedSpace { return e.regions }

// Estimate returns the total maximum-reward bound: per-region
// min(single-agent, flow-rate), summed over regions.
func (e *Estimator) Estimate() float64 {
	total := 0.0
	for _, rb := range e.regionBounds() {
		total += rb.Bound
	}
	return total
}

// RegionReport is one region's slice of the report.
type RegionReport struct {
	Index      int `json:"index"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Mines      int `json:"mines"`
	Generators int `json:"generators"`
	Altars     int `json:"altars"`
	Agents     int `json:"agents"`

	SingleAgentBound float64 `json:"single_agent_bound"`
	FlowRateBound    float64 `json:"flow_rate_bound"`
	Bound            float64 `json:"bound"`

	// Nil when the region has no agents ("n/a", never a division error).
	PerAgentBound *float64 `json:"per_agent_bound,omitempty"`
}

// Report is the full estimation breakdown.
type Report struct {
	Total          float64        `json:"total"`
	MaxTimesteps   int            `json:"max_timesteps"`
	InventoryLimit int            `json:"inventory_limit"`
	Mode           string         `json:"mode"`
	Warnings       []string       `json:"warnings,omitempty"`
	Regions        []RegionReport `json:"regions"`
}

// Report computes the structured breakdown. Like Estimate, idempotent.
func (e *Estimator) Report() Report {
	rbs := e.regionBounds()
	rep := Report{
		MaxTimesteps:   e.cfg.MaxTimesteps,
		InventoryLimit: e.cfg.InventoryLimit,
		Mode:           e.cfg.Mode.String(),
		Warnings:       e.cfg.Warnings,
		Regions:        rbs,
	}
	for _, rb := range rbs {
		rep.Total += rb.Bound
	}
	return rep
}

// regionBounds evaluates every region. Regions are independent and
// read-only, so they fan out across goroutines; results land in their
// region's slot, keeping the output deterministic.
func (e *Estimator) regionBounds() []RegionReport {
	out := make([]RegionReport, len(e.regions))
	var wg sync.WaitGroup
	for i, r := range e.regions {
		wg.Add(1)
		go func(i int, r *regions.EnclosedSpace) {
			defer wg.Done()
			out[i] = e.boundRegion(r)
		}(i, r)
	}
	wg.Wait()
	return out
}

func (e *Estimator) boundRegion(r *regions.EnclosedSpace) RegionReport {
	single := singleAgentBound(r, e.cfg)
	flow := flowRateBound(r, e.cfg)
	bound := single
	if flow < bound {
		bound = flow
	}

	rb := RegionReport{
		Index:            r.Index,
		Width:            r.Width(),
		Height:           r.Height(),
		Mines:            r.MineCount(),
		Generators:       r.GeneratorCount(),
		Altars:           len(r.Altars),
		Agents:           len(r.Agents),
		SingleAgentBound: single,
		FlowRateBound:    flow,
		Bound:            bound,
	}
	if n := len(r.Agents); n > 0 {
		per := bound / float64(n)
		rb.PerAgentBound = &per
	}
	return rb
}

// String renders the report for terminal output.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "max reward estimate: %.4f\n", r.Total)
	fmt.Fprintf(&b, "mode=%s max_timesteps=%d inventory_limit=%d regions=%d\n",
		r.Mode, r.MaxTimesteps, r.InventoryLimit, len(r.Regions))
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	for _, rr := range r.Regions {
		perAgent := "n/a"
		if rr.PerAgentBound != nil {
			perAgent = fmt.Sprintf("%.4f", *rr.PerAgentBound)
		}
		fmt.Fprintf(&b, "region %d: %dx%d mines=%d generators=%d altars=%d agents=%d single=%.4f flow=%.4f bound=%.4f per_agent=%s\n",
			rr.Index, rr.Width, rr.Height, rr.Mines, rr.Generators, rr.Altars, rr.Agents,
			rr.SingleAgentBound, rr.FlowRateBound, rr.Bound, perAgent)
	}
	return b.String()
}
