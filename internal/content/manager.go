package content

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/metrics"
	"github.com/decker502/animcore/internal/shape"
)

// ErrAnimationNotLoaded is returned when a code has no loaded animation.
var ErrAnimationNotLoaded = errors.New("animation not loaded")

// Manager holds the animations loaded from content files, keyed by code.
// Codes are prefixed with the domain ("domain:code") when a domain is set.
type Manager struct {
	mu         sync.RWMutex
	animations map[string]*animation.Animation
	sources    map[string]string
	failures   []Failure

	domain  string
	legacy  animation.LegacySource
	metrics *metrics.Recorder
}

// Failure describes a record that was skipped during loading.
type Failure struct {
	Source string
	Code   string
	Err    error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDomain prefixes loaded codes with domain and a colon.
func WithDomain(domain string) ManagerOption {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithLegacySource resolves legacyItemAnimation fields.
func WithLegacySource(source animation.LegacySource) ManagerOption {
	return func(m *Manager) {
		m.legacy = source
	}
}

// WithMetrics reports loaded and skipped records.
func WithMetrics(recorder *metrics.Recorder) ManagerOption {
	return func(m *Manager) {
		m.metrics = recorder
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		animations: make(map[string]*animation.Animation),
		sources:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load loads a content file, or every content file in a directory.
func (m *Manager) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access content path %s: %w", path, err)
	}
	if info.IsDir() {
		return m.LoadDir(path)
	}
	_, err = m.LoadFile(path)
	return err
}

// LoadDir loads every .json, .yaml and .yml file under dir, in lexical order.
// A file that cannot be read or parsed is logged and skipped.
func (m *Manager) LoadDir(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := ParseFormat(filepath.Ext(path)); err == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan content directory %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, file := range files {
		if _, err := m.LoadFile(file); err != nil {
			log.Printf("[ContentManager] Warning: skipping %s: %v", file, err)
			m.metrics.RecordFailed(file, metrics.ReasonRead)
		}
	}
	return nil
}

// LoadFile loads every record of a content file and returns the number
// loaded. Records that fail are logged, counted and skipped.
func (m *Manager) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read content file '%s': %w", path, err)
	}
	return m.LoadBytes(path, data)
}

// LoadBytes is LoadFile for content already in memory. source names the
// content in logs and metrics.
func (m *Manager) LoadBytes(source string, data []byte) (int, error) {
	raw, err := Split(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse content '%s': %w", source, err)
	}

	loaded := 0
	for _, r := range raw {
		a, err := m.build(r)
		if err != nil {
			log.Printf("[ContentManager] Warning: skipping animation '%s' in %s: %v", r.Code, source, err)
			m.metrics.RecordFailed(source, failureReason(err))
			m.mu.Lock()
			m.failures = append(m.failures, Failure{Source: source, Code: r.Code, Err: err})
			m.mu.Unlock()
			continue
		}

		code := m.qualify(r.Code)
		m.mu.Lock()
		if previous, exists := m.sources[code]; exists {
			log.Printf("[ContentManager] Warning: animation '%s' from %s replaces the one from %s", code, source, previous)
		}
		m.animations[code] = a
		m.sources[code] = source
		m.mu.Unlock()

		m.metrics.RecordLoaded(source)
		loaded++
	}
	return loaded, nil
}

func (m *Manager) build(r RawRecord) (*animation.Animation, error) {
	rec, err := r.Decode()
	if err != nil {
		return nil, err
	}
	return rec.ToAnimation(WithLegacy(m.legacy), WithRecorder(m.metrics))
}

func (m *Manager) qualify(code string) string {
	if m.domain == "" || strings.Contains(code, ":") {
		return code
	}
	return m.domain + ":" + code
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, easing.ErrUnknownEasing):
		return metrics.ReasonEasing
	case errors.Is(err, shape.ErrAnimationNotFound):
		return metrics.ReasonLegacy
	case errors.Is(err, animation.ErrNoPlayerKeyFrames):
		return metrics.ReasonNoPlayer
	case errors.Is(err, ErrInvalidRecord):
		return metrics.ReasonInvalid
	}
	return metrics.ReasonDecode
}

// Get returns the animation loaded under code.
func (m *Manager) Get(code string) (*animation.Animation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, exists := m.animations[code]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrAnimationNotLoaded, code)
	}
	return a, nil
}

// Source returns the file an animation was loaded from.
func (m *Manager) Source(code string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, ok := m.sources[code]
	return source, ok
}

// Codes lists the loaded codes in sorted order.
func (m *Manager) Codes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	codes := make([]string, 0, len(m.animations))
	for code := range m.animations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Failures returns the records skipped so far.
func (m *Manager) Failures() []Failure {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Failure(nil), m.failures...)
}

// Export returns the authored records of the given codes, or of every loaded
// animation when codes is empty.
func (m *Manager) Export(codes ...string) (map[string]Record, error) {
	if len(codes) == 0 {
		codes = m.Codes()
	}

	records := make(map[string]Record, len(codes))
	for _, code := range codes {
		a, err := m.Get(code)
		if err != nil {
			return nil, err
		}
		records[code] = FromAnimation(a)
	}
	return records, nil
}
