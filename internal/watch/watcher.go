package watch

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"sandwich_platform/internal/config"
	"sandwich_platform/internal/importer"
	"sandwich_platform/internal/metrics"
)

// Watcher monitors IMPORT_DIR for dropped CSV exports and imports them.
type Watcher struct {
	cfg  config.Config
	sink importer.Sink
	met  *metrics.Metrics
}

func New(cfg config.Config, sink importer.Sink, met *metrics.Metrics) *Watcher {
	return &Watcher{cfg: cfg, sink: sink, met: met}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		log.Println("import watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isCSV(evt.Name) {
					w.importFile(ctx, evt.Name)
				}
			case err := <-watcher.Errors:
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.cfg.ImportDir)
}

// Backfill imports files already sitting in the drop directory.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.ImportDir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isCSV(e) {
			w.importFile(ctx, e)
		}
	}
	return nil
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	result, err := importer.ImportFile(ctx, w.sink, path)
	if err != nil {
		log.Printf("import %s failed: %v", filepath.Base(path), err)
		return
	}
	w.met.AddImported(result.Imported)
	log.Printf("import %s: imported=%d skipped=%d", filepath.Base(path), result.Imported, result.Skipped)
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
