package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gridbound.ai/internal/transport/ws"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "http listen address")
		dataDir   = flag.String("data", "./data", "runtime data directory")
		disableDB = flag.Bool("disable_db", false, "disable the run log and sqlite index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	var sink ws.RunSink
	if !*disableDB {
		rec, err := newRunRecorder(
			filepath.Join(*dataDir, "runs"),
			filepath.Join(*dataDir, "index", "runs.sqlite"),
			logger,
		)
		if err != nil {
			logger.Fatalf("open run recorder: %v", err)
		}
		defer rec.Close()
		sink = rec
	}

	srv := ws.NewServer(logger, sink)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
