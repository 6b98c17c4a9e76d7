package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher rebuilds the manifest when files under the base folder change.
type Watcher struct {
	builder  *Builder
	output   string
	debounce time.Duration
	logger   *slog.Logger

	// OnRebuild, when set, is called after every rebuild attempt.
	OnRebuild func(*Manifest, error)
}

// NewWatcher creates a watcher writing to output.
func NewWatcher(builder *Builder, output string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{builder: builder, output: output, debounce: debounce, logger: logger}
}

// Run writes the manifest once, then rebuilds after each burst of changes
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	base := w.builder.opts.BaseFolder
	if err := fsw.Add(base); err != nil {
		return fmt.Errorf("watching %s: %w", base, err)
	}
	for _, category := range w.builder.opts.Categories {
		w.watchDir(fsw, filepath.Join(base, category))
	}

	w.rebuild(ctx)

	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

	var pending bool
	var lastEvent time.Time
	outputAbs, _ := filepath.Abs(w.output)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("manifest watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(event.Name); abs == outputAbs || strings.HasPrefix(filepath.Base(event.Name), tempPrefix) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == filepath.Clean(base) &&
				slices.Contains(w.builder.opts.Categories, filepath.Base(event.Name)) {
				w.watchDir(fsw, event.Name)
			}
			w.logger.Debug("manifest source changed", "path", event.Name, "op", event.Op.String())
			pending = true
			lastEvent = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("manifest watcher error", "error", err)

		case <-ticker.C:
			if pending && time.Since(lastEvent) >= w.debounce {
				pending = false
				w.rebuild(ctx)
			}
		}
	}
}

func (w *Watcher) watchDir(fsw *fsnotify.Watcher, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if err := fsw.Add(dir); err != nil {
		w.logger.Warn("cannot watch category folder", "path", dir, "error", err)
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	m, err := w.builder.BuildAndWrite(ctx, w.output)
	if err != nil {
		w.logger.Error("manifest rebuild failed", "error", err)
	}
	if w.OnRebuild != nil {
		w.OnRebuild(m, err)
	}
}
