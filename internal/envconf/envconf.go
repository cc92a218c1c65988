// Package envconf parses the declarative environment configuration the
// reward-bound estimator runs against: conversion-node parameters, reward
// weights, and the global agent/time limits.
package envconf

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"gridbound.ai/internal/gridmap"
)

// Mode is the economy mode decided from the tile map.
type Mode int

const (
	ModeUncolored Mode = iota
	ModeColored
)

func (m Mode) String() string {
	if m == ModeColored {
		return "colored"
	}
	return "uncolored"
}

// ResourceConfig holds one conversion node's parameters. Immutable value
// struct; range-checked at construction.
type ResourceConfig struct {
	Cooldown     int
	MaxOutput    int
	InputOre     int
	InputBattery int
}

// NewResourceConfig validates field ranges up front so a bad document
// fails at parse time, not at first use.
func NewResourceConfig(path string, cooldown, maxOutput, inputOre, inputBattery int) (ResourceConfig, error) {
	if cooldown < 0 {
		return ResourceConfig{}, fmt.Errorf("%s.cooldown: must be >= 0, got %d", path, cooldown)
	}
	if maxOutput < 1 {
		return ResourceConfig{}, fmt.Errorf("%s.max_output: must be >= 1, got %d", path, maxOutput)
	}
	if inputOre < 0 {
		return ResourceConfig{}, fmt.Errorf("%s.input_ore: must be >= 0, got %d", path, inputOre)
	}
	if inputBattery < 0 {
		return ResourceConfig{}, fmt.Errorf("%s.input_battery: must be >= 0, got %d", path, inputBattery)
	}
	return ResourceConfig{Cooldown: cooldown, MaxOutput: maxOutput, InputOre: inputOre, InputBattery: inputBattery}, nil
}

// RewardWeights maps resource kinds to reward-per-unit. Ore is keyed by
// color; ColorNone holds the uncolored weight.
type RewardWeights struct {
	Ore     map[gridmap.Color]float64
	Battery float64
	Heart   float64
}

// Config is the typed output of Parse: everything the estimators need.
type Config struct {
	Mine      map[gridmap.Color]ResourceConfig
	Generator map[gridmap.Color]ResourceConfig
	Altar     ResourceConfig

	Rewards        RewardWeights
	InventoryLimit int
	MaxTimesteps   int

	Mode      Mode
	RunColors []gridmap.Color

	// Non-fatal fallback notes, surfaced in the report.
	Warnings []string
}

var uniformRe = regexp.MustCompile(`^\$\{uniform:\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*\}$`)

// ParseScalar resolves one configuration scalar. Literal integers (and
// whole floats, a YAML/JSON decode artifact) pass through. A string
// matching ${uniform:<min>,<max>,<default>} resolves to the larger of its
// upper and default bounds: the estimator wants a conservative maximum,
// so a randomized parameter is pinned at the highest value it can take.
// Anything else is a parse error naming the offending path.
func ParseScalar(v any, path string) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) {
			return int(x), nil
		}
		return 0, fmt.Errorf("%s: non-integer value %v", path, x)
	case string:
		m := uniformRe.FindStringSubmatch(x)
		if m == nil {
			return 0, fmt.Errorf("%s: cannot parse %q", path, x)
		}
		upper, _ := strconv.Atoi(m[2])
		def, _ := strconv.Atoi(m[3])
		if def > upper {
			return def, nil
		}
		return upper, nil
	default:
		return 0, fmt.Errorf("%s: unsupported value %v (%T)", path, v, v)
	}
}

// ParseWeight resolves a reward weight. Weights are real-valued, so
// fractional literals pass through unchanged; strings still go through
// the integer placeholder rule.
func ParseWeight(v any, path string) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		n, err := ParseScalar(v, path)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s: unsupported value %v (%T)", path, v, v)
	}
}

// Load reads a YAML config document and parses it against the grid.
func Load(path string, grid *gridmap.Grid) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := Parse(doc, grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse builds the typed Config from a raw nested document. The document
// may come from YAML or from a JSON request body; both decode to
// map[string]any.
func Parse(doc map[string]any, grid *gridmap.Grid) (*Config, error) {
	p := &parser{doc: doc}

	cfg := &Config{
		Mine:      map[gridmap.Color]ResourceConfig{},
		Generator: map[gridmap.Color]ResourceConfig{},
		Rewards:   RewardWeights{Ore: map[gridmap.Color]float64{}},
	}

	mapColors := grid.Colors()
	if len(mapColors) > 0 {
		cfg.Mode = ModeColored
		cfg.RunColors = mapColors
	} else {
		cfg.Mode = ModeUncolored
		cfg.RunColors = []gridmap.Color{gridmap.ColorNone}
	}

	inv, err := p.requireScalar("agent", "max_inventory")
	if err != nil {
		return nil, err
	}
	if inv < 0 {
		return nil, fmt.Errorf("agent.max_inventory: must be >= 0, got %d", inv)
	}
	cfg.InventoryLimit = inv

	steps, err := p.requireScalar("game", "max_steps")
	if err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, fmt.Errorf("game.max_steps: must be >= 0, got %d", steps)
	}
	cfg.MaxTimesteps = steps

	if err := p.parseRewards(cfg); err != nil {
		return nil, err
	}
	if err := p.parseObjects(cfg); err != nil {
		return nil, err
	}

	cfg.Warnings = p.warnings
	return cfg, nil
}

type parser struct {
	doc      map[string]any
	warnings []string
}

func (p *parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// section walks nested map keys; nil if any level is missing.
func (p *parser) section(keys ...string) map[string]any {
	cur := p.doc
	for _, k := range keys {
		v, ok := cur[k]
		if !ok {
			return nil
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		cur = m
	}
	return cur
}

func (p *parser) requireScalar(section, key string) (int, error) {
	s := p.section(section)
	if s == nil {
		return 0, fmt.Errorf("%s: missing section", section)
	}
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("%s.%s: missing required field", section, key)
	}
	return ParseScalar(v, section+"."+key)
}

func (p *parser) parseRewards(cfg *Config) error {
	rewards := p.section("agent", "rewards")
	if len(rewards) == 0 {
		return fmt.Errorf("agent.rewards: missing required section")
	}

	scalar := func(key string) (float64, bool, error) {
		v, ok := rewards[key]
		if !ok {
			return 0, false, nil
		}
		w, err := ParseWeight(v, "agent.rewards."+key)
		if err != nil {
			return 0, false, err
		}
		return w, true, nil
	}

	battery, _, err := scalar("battery")
	if err != nil {
		return err
	}
	cfg.Rewards.Battery = battery

	heart, _, err := scalar("heart")
	if err != nil {
		return err
	}
	cfg.Rewards.Heart = heart

	for _, c := range cfg.RunColors {
		if c == gridmap.ColorNone {
			w, ok, err := scalar("ore")
			if err != nil {
				return err
			}
			if !ok {
				// Uncolored fallback: use the red entry and record it.
				w, ok, err = scalar("ore.red")
				if err != nil {
					return err
				}
				if ok {
					p.warnf("agent.rewards.ore missing; falling back to agent.rewards.ore.red")
				}
			}
			cfg.Rewards.Ore[c] = w
			continue
		}
		w, ok, err := scalar("ore." + c.String())
		if err != nil {
			return err
		}
		if !ok {
			if w, ok, err = scalar("ore"); err != nil {
				return err
			}
		}
		cfg.Rewards.Ore[c] = w
	}
	return nil
}

func (p *parser) parseObjects(cfg *Config) error {
	objects := p.section("objects")
	if objects == nil {
		return fmt.Errorf("objects: missing section")
	}

	for _, c := range cfg.RunColors {
		mine, err := p.resourceFor(objects, "mine", c)
		if err != nil {
			return err
		}
		cfg.Mine[c] = mine

		gen, err := p.resourceFor(objects, "generator", c)
		if err != nil {
			return err
		}
		cfg.Generator[c] = gen
	}

	altar, err := p.resource(objects, "altar")
	if err != nil {
		return err
	}
	cfg.Altar = altar
	return nil
}

// resourceFor resolves the per-color entry for kind. Colored lookups fall
// back to the plain entry (a shared default). Uncolored lookups fall back
// to the red entry with a warning, mirroring the rewards fallback.
func (p *parser) resourceFor(objects map[string]any, kind string, c gridmap.Color) (ResourceConfig, error) {
	if c == gridmap.ColorNone {
		if _, ok := objects[kind]; ok {
			return p.resource(objects, kind)
		}
		if _, ok := objects[kind+".red"]; ok {
			p.warnf("objects.%s missing; falling back to objects.%s.red", kind, kind)
			return p.resource(objects, kind+".red")
		}
		return ResourceConfig{}, fmt.Errorf("objects.%s: missing required entry", kind)
	}
	key := kind + "." + c.String()
	if _, ok := objects[key]; ok {
		return p.resource(objects, key)
	}
	if _, ok := objects[kind]; ok {
		return p.resource(objects, kind)
	}
	return ResourceConfig{}, fmt.Errorf("objects.%s: missing required entry (and no objects.%s default)", key, kind)
}

func (p *parser) resource(objects map[string]any, key string) (ResourceConfig, error) {
	entry, ok := objects[key].(map[string]any)
	if !ok {
		return ResourceConfig{}, fmt.Errorf("objects.%s: not a mapping", key)
	}
	path := "objects." + key

	required := func(field string) (int, error) {
		v, ok := entry[field]
		if !ok {
			return 0, fmt.Errorf("%s.%s: missing required field", path, field)
		}
		return ParseScalar(v, path+"."+field)
	}
	optional := func(field string) (int, error) {
		v, ok := entry[field]
		if !ok {
			return 0, nil
		}
		return ParseScalar(v, path+"."+field)
	}

	cooldown, err := required("cooldown")
	if err != nil {
		return ResourceConfig{}, err
	}
	maxOutput, err := required("max_output")
	if err != nil {
		return ResourceConfig{}, err
	}
	inputOre, err := optional("input_ore")
	if err != nil {
		return ResourceConfig{}, err
	}
	inputBattery, err := optional("input_battery")
	if err != nil {
		return ResourceConfig{}, err
	}
	return NewResourceConfig(path, cooldown, maxOutput, inputOre, inputBattery)
}
