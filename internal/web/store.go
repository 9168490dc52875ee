package web

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"calgen/internal/dsl"
	appLog "calgen/internal/log"
	"calgen/internal/metric"
	"calgen/internal/model"
)

// Store holds the parsed calendar file and keeps it fresh. A reload that
// fails leaves the last good document in place.
type Store struct {
	path    string
	metrics *metric.Metrics

	mu       sync.RWMutex
	groups   []model.EventGroup
	modTime  time.Time
	size     int64
	loadedAt time.Time
}

// NewStore loads path; the first load must succeed.
func NewStore(path string, m *metric.Metrics) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no calendar file given")
	}
	s := &Store{path: path, metrics: m}
	if err := s.load(true); err != nil {
		return nil, err
	}
	return s, nil
}

// Groups returns the current document. Callers must not modify it.
func (s *Store) Groups() []model.EventGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups
}

// Path returns the calendar file the store reads.
func (s *Store) Path() string {
	return s.path
}

// LoadedAt returns when the current document was parsed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload re-reads the calendar file if it changed on disk.
func (s *Store) Reload() error {
	return s.load(false)
}

func (s *Store) load(force bool) error {
	info, err := os.Stat(s.path)
	if err != nil {
		s.metrics.ObserveReload(0, err)
		if !force {
			appLog.Error("calendar reload failed; keeping previous document", err, "path", s.path)
		}
		return err
	}

	s.mu.RLock()
	unchanged := info.ModTime().Equal(s.modTime) && info.Size() == s.size
	s.mu.RUnlock()
	if unchanged && !force {
		return nil
	}

	groups, err := dsl.ParseFile(s.path)
	if err != nil {
		s.metrics.ObserveReload(0, err)
		if !force {
			appLog.Error("calendar reload failed; keeping previous document", err, "path", s.path)
		}
		return err
	}

	s.mu.Lock()
	s.groups = groups
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.metrics.ObserveReload(len(groups), nil)
	appLog.Info("calendar loaded", "path", s.path, "groups", len(groups))
	return nil
}

// Watch schedules Reload on a cron spec such as "@every 1m" and starts
// the scheduler. Stop the returned cron to end it.
func (s *Store) Watch(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { _ = s.Reload() }); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	c.Start()
	appLog.Debug("calendar reload scheduled", "schedule", schedule, "path", s.path)
	return c, nil
}
