// Package library persists animations edited by tools between sessions.
//
// Animations are stored in the authored content format, one gdata property per
// animation code, alongside an index property listing the stored codes. Without
// a gdata manager the store keeps everything in memory.
package library

import (
	"errors"
	"fmt"
	"hash/crc32"
	"log"
	"sort"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/content"
)

// ErrNotFound is returned when a code has no stored animation.
var ErrNotFound = errors.New("animation not found in library")

const (
	animationsObject = "animations"
	indexObject      = "library"
	indexProperty    = "index"
)

// Store saves and loads animations by code.
type Store struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager // nil means memory only
	memory       map[string][]byte
	codes        map[string]struct{}
}

// NewStore creates a store backed by gdataManager, which may be nil.
// An unreadable index is logged and treated as empty.
func NewStore(gdataManager *gdata.Manager) *Store {
	s := &Store{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
		codes:        make(map[string]struct{}),
	}
	if err := s.loadIndex(); err != nil {
		log.Printf("[Library] Warning: Failed to load index: %v (starting empty)", err)
	}
	return s
}

// Persistent reports whether the store writes through to gdata.
func (s *Store) Persistent() bool {
	return s.gdataManager != nil
}

func (s *Store) loadIndex() error {
	if s.gdataManager == nil || !s.gdataManager.ObjectPropExists(indexObject, indexProperty) {
		return nil
	}

	data, err := s.gdataManager.LoadObjectProp(indexObject, indexProperty)
	if err != nil {
		return fmt.Errorf("failed to load library index: %w", err)
	}

	var codes []string
	if err := yaml.Unmarshal(data, &codes); err != nil {
		return fmt.Errorf("failed to unmarshal library index: %w", err)
	}
	for _, code := range codes {
		s.codes[code] = struct{}{}
	}
	return nil
}

func (s *Store) saveIndex() error {
	if s.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.sortedCodes())
	if err != nil {
		return fmt.Errorf("failed to marshal library index: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(indexObject, indexProperty, data); err != nil {
		return fmt.Errorf("failed to save library index: %w", err)
	}
	return nil
}

// property maps a code to a file-safe property name.
func property(code string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(code)))
}

// Save stores a under code, replacing any previous animation with that code.
func (s *Store) Save(code string, a *animation.Animation) error {
	data, err := content.Marshal(map[string]content.Record{code: content.FromAnimation(a)}, content.FormatYAML)
	if err != nil {
		return fmt.Errorf("failed to marshal animation %q: %w", code, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gdataManager == nil {
		s.memory[code] = data
		s.codes[code] = struct{}{}
		return nil
	}

	if err := s.gdataManager.SaveObjectProp(animationsObject, property(code), data); err != nil {
		return fmt.Errorf("failed to save animation %q: %w", code, err)
	}
	s.codes[code] = struct{}{}
	if err := s.saveIndex(); err != nil {
		return err
	}

	log.Printf("[Library] Saved animation '%s'", code)
	return nil
}

// Load returns the animation stored under code.
func (s *Store) Load(code string) (*animation.Animation, error) {
	data, err := s.read(code)
	if err != nil {
		return nil, err
	}

	records, err := content.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal animation %q: %w", code, err)
	}
	rec, ok := records[code]
	if !ok {
		// property names can collide; the document carries the real code
		return nil, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	return rec.ToAnimation()
}

func (s *Store) read(code string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[code]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	if s.gdataManager == nil {
		return s.memory[code], nil
	}
	if !s.gdataManager.ObjectPropExists(animationsObject, property(code)) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	data, err := s.gdataManager.LoadObjectProp(animationsObject, property(code))
	if err != nil {
		return nil, fmt.Errorf("failed to load animation %q: %w", code, err)
	}
	return data, nil
}

// Forget removes code from the index. The stored data is overwritten by the
// next Save under the same code.
func (s *Store) Forget(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[code]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	delete(s.codes, code)
	delete(s.memory, code)
	return s.saveIndex()
}

// Codes lists the stored codes in sorted order.
func (s *Store) Codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCodes()
}

func (s *Store) sortedCodes() []string {
	codes := make([]string, 0, len(s.codes))
	for code := range s.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Import saves every animation loaded by m. It returns the number saved.
func (s *Store) Import(m *content.Manager) (int, error) {
	saved := 0
	for _, code := range m.Codes() {
		a, err := m.Get(code)
		if err != nil {
			return saved, err
		}
		if err := s.Save(code, a); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}
