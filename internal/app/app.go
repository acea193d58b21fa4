package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"sandwich_platform/internal/config"
	"sandwich_platform/internal/events"
	"sandwich_platform/internal/httpapi"
	"sandwich_platform/internal/metrics"
	"sandwich_platform/internal/store"
	"sandwich_platform/internal/watch"
)

// App wires the platform components together.
type App struct {
	cfg     config.Config
	store   *store.Store
	bus     *events.Bus
	met     *metrics.Metrics
	watcher *watch.Watcher
	mux     *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.ImportDir, 0o755); err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus()
	met := metrics.New()
	watcher := watch.New(cfg, st, met)
	mux := http.NewServeMux()
	router := httpapi.NewRouter(cfg, st, bus, met)
	router.Register(mux)
	return &App{cfg: cfg, store: st, bus: bus, met: met, watcher: watcher, mux: mux}, nil
}

// Run starts the import watcher and HTTP server, blocking until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	if err := a.watcher.Backfill(ctx); err != nil {
		log.Printf("import backfill: %v", err)
	}
	srv := &http.Server{Addr: ":" + a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("http listening on %s", a.cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return a.store.Close()
}

func (a *App) Store() *store.Store { return a.store }
func (a *App) Bus() *events.Bus    { return a.bus }
func (a *App) Mux() *http.ServeMux { return a.mux }
