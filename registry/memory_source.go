package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/norcalsbdc/advisorflow"
)

// MemorySource holds raw definitions in process. It backs tests and definitions
// assembled with the builder package.
type MemorySource struct {
	raws map[string]advisorflow.RawDefinition
	mu   sync.RWMutex
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		raws: make(map[string]advisorflow.RawDefinition),
	}
}

var _ advisorflow.DefinitionSource = (*MemorySource)(nil)

// Add stores a raw blob under name, replacing any previous one
func (s *MemorySource) Add(name string, format advisorflow.DefinitionFormat, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.raws[name] = advisorflow.RawDefinition{
		Name:   name,
		Format: format,
		Data:   append([]byte(nil), data...),
	}
}

// AddDefinition stores def as JSON under its id
func (s *MemorySource) AddDefinition(def *advisorflow.WorkflowDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow definition: %w", err)
	}
	s.Add(def.ID, advisorflow.FormatJSON, data)
	return nil
}

// Remove deletes the blob stored under name
func (s *MemorySource) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.raws, name)
}

func (s *MemorySource) List(ctx context.Context) ([]advisorflow.RawDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.raws))
	for name := range s.raws {
		names = append(names, name)
	}
	sort.Strings(names)

	raws := make([]advisorflow.RawDefinition, 0, len(names))
	for _, name := range names {
		raws = append(raws, s.raws[name])
	}
	return raws, nil
}

func (s *MemorySource) Get(ctx context.Context, name string) (advisorflow.RawDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.raws[name]
	if !ok {
		return advisorflow.RawDefinition{}, fmt.Errorf("%w: %q", advisorflow.ErrDefinitionNotFound, name)
	}
	return raw, nil
}
