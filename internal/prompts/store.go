package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/solace/internal/checksum"
	pkgconfig "github.com/starford/solace/pkg/config"
)

const reloadDebounce = 150 * time.Millisecond

// Store serves the current prompt Set. When backed by a file, the file's
// values override the built-in defaults field by field.
type Store struct {
	path   string
	logger *slog.Logger

	current atomic.Pointer[Set]

	mu  sync.Mutex
	sum string
}

// NewStore creates a store. An empty path serves the built-in defaults only.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	s.current.Store(Default())
	if path == "" {
		return s, nil
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active Set. The returned value must not be modified.
func (s *Store) Current() *Set {
	return s.current.Load()
}

// Reload re-reads the backing file. It reports whether the active set changed.
// On error the previous set stays active.
func (s *Store) Reload() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("prompts: read %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, changed := checksum.Changed(s.sum, data)
	if !changed {
		return false, nil
	}
	set := Default()
	if err := pkgconfig.Decode(data, set); err != nil {
		return false, fmt.Errorf("prompts: %s: %w", s.path, err)
	}
	s.current.Store(set)
	s.sum = sum
	return true, nil
}

// Watch reloads the backing file whenever it changes until ctx is cancelled.
// The parent directory is watched so that editors replacing the file by
// rename are picked up.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	s.logger.Info("prompts: watching", slog.String("path", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			fire = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("prompts: watcher stopped")
			return nil

		case <-fire:
			changed, err := s.Reload()
			if err != nil {
				s.logger.Warn("prompts: reload failed, keeping previous set", slog.String("error", err.Error()))
				continue
			}
			if changed {
				s.logger.Info("prompts: reloaded", slog.String("path", target))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("prompts: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
