package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gridbound.ai/internal/envconf"
	"gridbound.ai/internal/estimator"
	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/persistence/indexdb"
	"gridbound.ai/internal/persistence/runlog"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/env.yaml", "environment config path")
		mapPath    = flag.String("map", "./configs/map.yaml", "tile map path")
		dataDir    = flag.String("data", "", "data directory; when set, the run is appended to the run log and sqlite index")
		tag        = flag.String("tag", "", "optional run tag")
		asJSON     = flag.Bool("json", false, "emit the report as JSON instead of text")
	)
	flag.Parse()

	grid, err := gridmap.Load(*mapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load map:", err)
		os.Exit(1)
	}
	cfg, err := envconf.Load(*configPath, grid)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	est := estimator.New(cfg, grid)
	rep := est.Report()

	if *asJSON {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "marshal report:", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
	} else {
		fmt.Print(rep.String())
	}

	if *dataDir == "" {
		return
	}

	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	source := fmt.Sprintf("%s %s", *configPath, *mapPath)

	lw := runlog.NewWriter(filepath.Join(*dataDir, "runs"))
	defer lw.Close()
	if err := lw.Write(runlog.Entry{
		RunID:    runID,
		At:       now,
		Tag:      *tag,
		Source:   source,
		Width:    grid.Width(),
		Height:   grid.Height(),
		Regions:  len(rep.Regions),
		Total:    rep.Total,
		Warnings: rep.Warnings,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "run log:", err)
		os.Exit(1)
	}

	db, err := indexdb.Open(filepath.Join(*dataDir, "index", "runs.sqlite"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.InsertRun(indexdb.RunRow{
		RunID:     runID,
		CreatedAt: now,
		Tag:       *tag,
		Source:    source,
		Width:     grid.Width(),
		Height:    grid.Height(),
		Regions:   len(rep.Regions),
		Total:     rep.Total,
	}, rep); err != nil {
		fmt.Fprintln(os.Stderr, "index run:", err)
		os.Exit(1)
	}
}
