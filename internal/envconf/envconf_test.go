package envconf

import (
	"strings"
	"testing"

	"gridbound.ai/internal/gridmap"
)

func mustGrid(t *testing.T, rows [][]string) *gridmap.Grid {
	t.Helper()
	g, err := gridmap.FromRows(rows)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func uncoloredGrid(t *testing.T) *gridmap.Grid {
	return mustGrid(t, [][]string{
		{"mine", "generator", "altar", "agent.agent"},
	})
}

func baseDoc() map[string]any {
	return map[string]any{
		"game": map[string]any{"max_steps": 1000},
		"agent": map[string]any{
			"max_inventory": 10,
			"rewards": map[string]any{
				"ore":     0,
				"battery": 0,
				"heart":   1,
			},
		},
		"objects": map[string]any{
			"mine":      map[string]any{"cooldown": 2, "max_output": 5},
			"generator": map[string]any{"cooldown": 1, "max_output": 5, "input_ore": 1},
			"altar":     map[string]any{"cooldown": 1, "max_output": 1, "input_battery": 2},
		},
	}
}

func TestParseScalar(t *testing.T) {
	cases := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{5, 5, false},
		{int64(7), 7, false},
		{float64(7), 7, false},
		{2.5, 0, true},
		{"${uniform:1,30,10}", 30, false},
		{"${uniform: 1, 30, 10}", 30, false},
		{"${uniform:1,5,20}", 20, false},
		{"${uniform:-10,-2,-5}", -2, false},
		{"bogus", 0, true},
		{"${uniform:1,2}", 0, true},
		{nil, 0, true},
	}
	for _, c := range cases {
		got, err := ParseScalar(c.in, "test.path")
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseScalar(%v): want error", c.in)
			}
			if !strings.Contains(err.Error(), "test.path") {
				t.Fatalf("ParseScalar(%v): error %q does not name the path", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseScalar(%v): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseScalar(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParse_FractionalRewardWeights(t *testing.T) {
	// Reward weights are real-valued, unlike node parameters. A fractional
	// literal must parse; a malformed string must still be fatal.
	doc := baseDoc()
	rewards := doc["agent"].(map[string]any)["rewards"].(map[string]any)
	rewards["ore"] = 0.5
	rewards["battery"] = 0.125
	rewards["heart"] = 2.5

	cfg, err := Parse(doc, uncoloredGrid(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Rewards.Ore[gridmap.ColorNone] != 0.5 {
		t.Fatalf("ore reward = %v, want 0.5", cfg.Rewards.Ore[gridmap.ColorNone])
	}
	if cfg.Rewards.Battery != 0.125 || cfg.Rewards.Heart != 2.5 {
		t.Fatalf("rewards = %v/%v, want 0.125/2.5", cfg.Rewards.Battery, cfg.Rewards.Heart)
	}

	bad := baseDoc()
	bad["agent"].(map[string]any)["rewards"].(map[string]any)["heart"] = "priceless"
	if _, err := Parse(bad, uncoloredGrid(t)); err == nil {
		t.Fatalf("want parse error for malformed reward weight")
	}
}

func TestParse_Uncolored(t *testing.T) {
	cfg, err := Parse(baseDoc(), uncoloredGrid(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Mode != ModeUncolored {
		t.Fatalf("mode = %v, want uncolored", cfg.Mode)
	}
	if len(cfg.RunColors) != 1 || cfg.RunColors[0] != gridmap.ColorNone {
		t.Fatalf("run colors = %v", cfg.RunColors)
	}
	if cfg.InventoryLimit != 10 || cfg.MaxTimesteps != 1000 {
		t.Fatalf("limits = %d/%d", cfg.InventoryLimit, cfg.MaxTimesteps)
	}
	mine := cfg.Mine[gridmap.ColorNone]
	if mine.Cooldown != 2 || mine.MaxOutput != 5 {
		t.Fatalf("mine config = %+v", mine)
	}
	if cfg.Altar.InputBattery != 2 {
		t.Fatalf("altar input_battery = %d", cfg.Altar.InputBattery)
	}
	if cfg.Rewards.Heart != 1 {
		t.Fatalf("heart reward = %v", cfg.Rewards.Heart)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings)
	}
}

func TestParse_UniformPlaceholder(t *testing.T) {
	doc := baseDoc()
	doc["objects"].(map[string]any)["mine"].(map[string]any)["cooldown"] = "${uniform:0,6,3}"
	cfg, err := Parse(doc, uncoloredGrid(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.Mine[gridmap.ColorNone].Cooldown; got != 6 {
		t.Fatalf("cooldown = %d, want the conservative upper bound 6", got)
	}
}

func TestParse_MalformedScalarFatal(t *testing.T) {
	doc := baseDoc()
	doc["game"].(map[string]any)["max_steps"] = "lots"
	if _, err := Parse(doc, uncoloredGrid(t)); err == nil {
		t.Fatalf("want parse error for malformed scalar")
	}
}

func TestParse_MissingRequired(t *testing.T) {
	for _, drop := range []func(map[string]any){
		func(d map[string]any) { delete(d["agent"].(map[string]any), "max_inventory") },
		func(d map[string]any) { delete(d["game"].(map[string]any), "max_steps") },
		func(d map[string]any) { delete(d["agent"].(map[string]any), "rewards") },
		func(d map[string]any) { delete(d["objects"].(map[string]any), "altar") },
		func(d map[string]any) {
			delete(d["objects"].(map[string]any)["mine"].(map[string]any), "cooldown")
		},
		func(d map[string]any) {
			delete(d["objects"].(map[string]any)["generator"].(map[string]any), "max_output")
		},
	} {
		doc := baseDoc()
		drop(doc)
		if _, err := Parse(doc, uncoloredGrid(t)); err == nil {
			t.Fatalf("want error for missing required field")
		}
	}
}

func TestParse_UncoloredFallbackToRed(t *testing.T) {
	doc := baseDoc()
	objects := doc["objects"].(map[string]any)
	objects["mine.red"] = objects["mine"]
	delete(objects, "mine")
	rewards := doc["agent"].(map[string]any)["rewards"].(map[string]any)
	rewards["ore.red"] = 3
	delete(rewards, "ore")

	cfg, err := Parse(doc, uncoloredGrid(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Mine[gridmap.ColorNone].Cooldown != 2 {
		t.Fatalf("mine fallback not applied: %+v", cfg.Mine[gridmap.ColorNone])
	}
	if cfg.Rewards.Ore[gridmap.ColorNone] != 3 {
		t.Fatalf("ore reward fallback not applied: %v", cfg.Rewards.Ore)
	}
	if len(cfg.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 fallback notes", cfg.Warnings)
	}
}

func TestParse_ColoredMode(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"mine.red", "generator.red", "altar", "mine.blue", "generator.blue"},
	})
	doc := baseDoc()
	objects := doc["objects"].(map[string]any)
	objects["mine.red"] = map[string]any{"cooldown": 4, "max_output": 2}
	rewards := doc["agent"].(map[string]any)["rewards"].(map[string]any)
	rewards["ore.blue"] = 5

	cfg, err := Parse(doc, grid)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Mode != ModeColored {
		t.Fatalf("mode = %v, want colored", cfg.Mode)
	}
	if len(cfg.RunColors) != 2 {
		t.Fatalf("run colors = %v", cfg.RunColors)
	}
	// Explicit per-color entry wins; others share the plain default.
	if cfg.Mine[gridmap.ColorRed].Cooldown != 4 {
		t.Fatalf("mine.red = %+v", cfg.Mine[gridmap.ColorRed])
	}
	if cfg.Mine[gridmap.ColorBlue].Cooldown != 2 {
		t.Fatalf("mine.blue default = %+v", cfg.Mine[gridmap.ColorBlue])
	}
	if cfg.Rewards.Ore[gridmap.ColorBlue] != 5 || cfg.Rewards.Ore[gridmap.ColorRed] != 0 {
		t.Fatalf("ore rewards = %v", cfg.Rewards.Ore)
	}
}

func TestNewResourceConfig_Ranges(t *testing.T) {
	if _, err := NewResourceConfig("objects.mine", -1, 1, 0, 0); err == nil {
		t.Fatalf("want error for negative cooldown")
	}
	if _, err := NewResourceConfig("objects.mine", 0, 0, 0, 0); err == nil {
		t.Fatalf("want error for max_output < 1")
	}
}
