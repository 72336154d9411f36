package fonts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"

	"github.com/fulluproar/backoffice/internal/domain/designer"
)

const watchDebounce = 300 * time.Millisecond

type localFile struct {
	family  string
	variant Variant
	data    []byte
}

// LocalDirWatcher registers the font files of a directory as families and
// keeps the registry in sync as files are added, replaced or removed
type LocalDirWatcher struct {
	dir      string
	registry *Registry
	logger   *zap.Logger

	mu    sync.Mutex
	files map[string]localFile

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLocalDirWatcher creates a watcher for dir
func NewLocalDirWatcher(dir string, registry *Registry, logger *zap.Logger) *LocalDirWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDirWatcher{
		dir:      dir,
		registry: registry,
		logger:   logger,
		files:    make(map[string]localFile),
	}
}

// Start loads every font file in the directory and begins watching it
func (w *LocalDirWatcher) Start(ctx context.Context) error {
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fmt.Errorf("invalid font directory: %w", err)
	}
	w.dir = abs
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("failed to create font directory: %w", err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("failed to read font directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.upsert(filepath.Join(abs, e.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(abs); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch font directory: %w", err)
	}
	w.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(watchCtx)

	w.logger.Info("Watching local font directory", zap.String("dir", abs), zap.Int("files", len(w.files)))
	return nil
}

// Close stops watching
func (w *LocalDirWatcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
	}
	w.wg.Wait()
	return err
}

func (w *LocalDirWatcher) run(ctx context.Context) {
	defer w.wg.Done()
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isFontFile(event.Name) {
				continue
			}
			path := event.Name
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(timers, path)
				w.remove(path)
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timers[path] = time.AfterFunc(watchDebounce, func() { w.upsert(path) })
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Font directory watcher error", zap.Error(err))
		}
	}
}

// upsert (re)reads one file and re-registers its family
func (w *LocalDirWatcher) upsert(path string) {
	if !isFontFile(path) {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("Failed to read font file", zap.String("path", path), zap.Error(err))
		return
	}
	family, variant, err := describeFont(data)
	if err != nil {
		w.logger.Warn("Ignoring unreadable font file", zap.String("path", path), zap.Error(err))
		return
	}

	w.mu.Lock()
	previous, had := w.files[path]
	w.files[path] = localFile{family: family, variant: variant, data: data}
	w.mu.Unlock()

	if had && normalizeFamily(previous.family) != normalizeFamily(family) {
		w.sync(previous.family)
	}
	w.sync(family)
}

func (w *LocalDirWatcher) remove(path string) {
	w.mu.Lock()
	previous, had := w.files[path]
	delete(w.files, path)
	w.mu.Unlock()
	if had {
		w.sync(previous.family)
	}
}

// sync registers family from the files currently on disk, or unregisters it
// when none are left
func (w *LocalDirWatcher) sync(family string) {
	key := normalizeFamily(family)
	files := make(map[Variant][]byte)

	w.mu.Lock()
	for _, f := range w.files {
		if normalizeFamily(f.family) == key {
			files[f.variant] = f.data
		}
	}
	w.mu.Unlock()

	if len(files) == 0 {
		if w.registry.Unregister(family) {
			w.logger.Info("Local font family removed", zap.String("family", family))
		}
		return
	}
	if w.isBuiltin(family) {
		w.logger.Warn("Local font file shadows a built-in family; ignored", zap.String("family", family))
		return
	}
	if err := w.registry.Register(family, SourceLocal, files); err != nil {
		w.logger.Warn("Failed to register local font family", zap.String("family", family), zap.Error(err))
		return
	}
	w.logger.Info("Local font family registered", zap.String("family", family), zap.Int("variants", len(files)))
}

func (w *LocalDirWatcher) isBuiltin(family string) bool {
	key := normalizeFamily(family)
	for _, name := range BuiltinFamilyNames() {
		if normalizeFamily(name) == key {
			return true
		}
	}
	return false
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// describeFont reads the family and variant from a font's name table
func describeFont(data []byte) (string, Variant, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", Variant{}, err
	}
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDTypographicFamily)
	if err != nil || strings.TrimSpace(family) == "" {
		family, err = f.Name(&buf, sfnt.NameIDFamily)
		if err != nil {
			return "", Variant{}, fmt.Errorf("font has no family name: %w", err)
		}
	}
	sub, err := f.Name(&buf, sfnt.NameIDTypographicSubfamily)
	if err != nil || strings.TrimSpace(sub) == "" {
		sub, _ = f.Name(&buf, sfnt.NameIDSubfamily)
	}
	return displayFamily(family), variantFromSubfamily(sub), nil
}

func variantFromSubfamily(sub string) Variant {
	sub = strings.ToLower(sub)
	v := Regular
	if strings.Contains(sub, "bold") || strings.Contains(sub, "black") || strings.Contains(sub, "heavy") {
		v.Weight = designer.FontWeightBold
	}
	if strings.Contains(sub, "italic") || strings.Contains(sub, "oblique") {
		v.Style = designer.FontStyleItalic
	}
	return v
}
