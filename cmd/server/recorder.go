package main

import (
	"log"
	"time"

	"gridbound.ai/internal/estimator"
	"gridbound.ai/internal/persistence/indexdb"
	"gridbound.ai/internal/persistence/runlog"
)

// runRecorder fans each completed estimation into the run log and the
// sqlite index. Recording failures are logged, never surfaced to the
// client; the estimate itself already succeeded.
type runRecorder struct {
	log *log.Logger
	lw  *runlog.Writer
	db  *indexdb.DB
}

func newRunRecorder(runDir, dbPath string, logger *log.Logger) (*runRecorder, error) {
	db, err := indexdb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &runRecorder{
		log: logger,
		lw:  runlog.NewWriter(runDir),
		db:  db,
	}, nil
}

func (r *runRecorder) RecordRun(runID, tag string, width, height int, rep estimator.Report) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := r.lw.Write(runlog.Entry{
		RunID:    runID,
		At:       now,
		Tag:      tag,
		Source:   "ws",
		Width:    width,
		Height:   height,
		Regions:  len(rep.Regions),
		Total:    rep.Total,
		Warnings: rep.Warnings,
	}); err != nil {
		r.log.Printf("run log: %v", err)
	}
	if err := r.db.InsertRun(indexdb.RunRow{
		RunID:     runID,
		CreatedAt: now,
		Tag:       tag,
		Source:    "ws",
		Width:     width,
		Height:    height,
		Regions:   len(rep.Regions),
		Total:     rep.Total,
	}, rep); err != nil {
		r.log.Printf("index run: %v", err)
	}
}

func (r *runRecorder) Close() {
	_ = r.lw.Close()
	_ = r.db.Close()
}
