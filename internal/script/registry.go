package script

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Registry holds the loaded scripts. Embedded scripts register first;
// external files with the same name override them, and the watcher keeps
// external scripts fresh while the process runs.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]*Script
	dir     string

	onReload func(name string)
}

// NewRegistry creates a registry. dir may be empty, in which case only
// embedded scripts are available and watching is a no-op.
func NewRegistry(dir string) *Registry {
	return &Registry{
		scripts: make(map[string]*Script),
		dir:     dir,
	}
}

// AddEmbedded registers a compiled-in script under the given name unless an
// external script already shadows it.
func (r *Registry) AddEmbedded(name, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.scripts[name]; ok && existing.Source == SourceExternal {
		return
	}
	r.scripts[name] = &Script{
		Name:         name,
		Content:      content,
		Source:       SourceEmbedded,
		LastModified: time.Now(),
	}
}

// LoadExternal scans the script directory for *.tengo files, overriding any
// embedded script with the same base name. Missing directory is not an
// error: external scripts are optional.
func (r *Registry) LoadExternal() error {
	if r.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tengo") {
			continue
		}
		if err := r.loadFile(filepath.Join(r.dir, entry.Name())); err != nil {
			slog.Error("Failed to load external script", "file", entry.Name(), "error", err)
		}
	}
	return nil
}

func (r *Registry) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), ".tengo")

	r.mu.Lock()
	r.scripts[name] = &Script{
		Name:         name,
		Content:      string(content),
		Source:       SourceExternal,
		LastModified: time.Now(),
	}
	r.mu.Unlock()

	slog.Info("External script loaded", "script", name, "path", path)
	return nil
}

// Get retrieves a script by name.
func (r *Registry) Get(name string) (*Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sc, ok := r.scripts[name]
	if !ok {
		return nil, NewError(ErrorTypeNotFound, name, "script not found", nil)
	}
	return sc, nil
}

// Names lists all registered scripts.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	return names
}

// OnReload sets a callback invoked with the script name after a hot reload.
func (r *Registry) OnReload(fn func(name string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = fn
}

// Watch monitors the script directory and reloads scripts on change. It
// blocks until the context is canceled; callers run it in a goroutine.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return err
	}

	slog.Info("Watching script directory", "dir", r.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".tengo") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.loadFile(event.Name); err != nil {
				slog.Error("Hot reload failed", "file", event.Name, "error", err)
				continue
			}

			r.mu.RLock()
			fn := r.onReload
			r.mu.RUnlock()
			if fn != nil {
				fn(strings.TrimSuffix(filepath.Base(event.Name), ".tengo"))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Script watcher error", "error", err)
		}
	}
}
