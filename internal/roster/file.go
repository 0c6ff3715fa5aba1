package roster

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// rosterFile is the on-disk layout of a static roster.
type rosterFile struct {
	Cards []Card              `yaml:"cards"`
	Teams map[string][]string `yaml:"teams"`
}

// FileStore is an in-memory Store loaded from a YAML roster file. It also
// carries named teams so simulations can refer to line-ups by name.
//
// FileStore is safe for concurrent use.
type FileStore struct {
	mu    sync.RWMutex
	cards map[string]Card
	teams map[string][]CardRef
}

// NewFileStore creates a FileStore holding cards.
//
// Precondition: card IDs are unique and non-empty.
func NewFileStore(cards ...Card) (*FileStore, error) {
	s := &FileStore{cards: make(map[string]Card, len(cards)), teams: make(map[string][]CardRef)}
	for _, c := range cards {
		if err := s.Put(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadFile parses a YAML roster file.
//
// Precondition: path names a readable YAML file with a top-level cards list.
// Postcondition: Every team member references a card in the file.
func LoadFile(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster %s: %w", path, err)
	}
	defer f.Close()

	var doc rosterFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}

	s, err := NewFileStore(doc.Cards...)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	for name, ids := range doc.Teams {
		for _, id := range ids {
			if _, ok := s.cards[id]; !ok {
				return nil, fmt.Errorf("roster %s: team %q: card %q: %w", path, name, id, ErrCardNotFound)
			}
		}
		s.teams[name] = Refs(ids...)
	}
	return s, nil
}

// Put inserts or replaces a card.
func (s *FileStore) Put(c Card) error {
	if c.ID == "" {
		return fmt.Errorf("card %q: id is required", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("card %q: name is required", c.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.ID] = c
	return nil
}

// GetCards implements Store.
func (s *FileStore) GetCards(_ context.Context, ids []string) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Team returns the references of a named team.
func (s *FileStore) Team(name string) ([]CardRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs, ok := s.teams[name]
	if !ok {
		return nil, false
	}
	return append([]CardRef(nil), refs...), true
}

// TeamNames returns every named team in sorted order.
func (s *FileStore) TeamNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.teams))
	for k := range s.teams {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns every card in ID order.
func (s *FileStore) All() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of cards held.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}
