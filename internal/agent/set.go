package agent

import (
	"fmt"

	"github.com/josephgoksu/muse/internal/persona"
)

// Set holds one pipeline per registered persona.
type Set struct {
	pipelines map[string]*Pipeline
	ids       []string
}

// NewSet builds a pipeline for every persona in reg.
func NewSet(reg *persona.Registry, models ModelSource, opts ...Option) *Set {
	s := &Set{pipelines: make(map[string]*Pipeline, reg.Len())}
	for _, p := range reg.List() {
		s.pipelines[p.ID] = New(p, models, opts...)
		s.ids = append(s.ids, p.ID)
	}
	return s
}

// Get returns the pipeline for persona id.
func (s *Set) Get(id string) (*Pipeline, error) {
	pl, ok := s.pipelines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persona.ErrUnknownPersona, id)
	}
	return pl, nil
}

// IDs returns persona IDs in sorted order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}
