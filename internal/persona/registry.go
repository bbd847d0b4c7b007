package persona

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// Registry is an immutable set of personas keyed by ID.
// It is safe for concurrent use once constructed.
type Registry struct {
	byID map[string]Persona
	ids  []string
}

// NewRegistry validates and indexes personas. When two personas share an ID
// the later one wins.
func NewRegistry(personas ...Persona) (*Registry, error) {
	r := &Registry{byID: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		p.Examples = slices.Clone(p.Examples)
		r.byID[p.ID] = p
	}
	for id := range r.byID {
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Builtin returns the registry of embedded personas.
func Builtin() (*Registry, error) {
	personas, err := builtinPersonas()
	if err != nil {
		return nil, err
	}
	return NewRegistry(personas...)
}

// Load returns the built-in personas merged with every *.yaml file in dir.
// File personas replace built-ins with the same ID. An empty dir loads built-ins only.
func Load(fsys afero.Fs, dir string) (*Registry, error) {
	personas, err := builtinPersonas()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) != "" {
		extra, err := LoadDir(fsys, dir)
		if err != nil {
			return nil, err
		}
		personas = append(personas, extra...)
	}
	return NewRegistry(personas...)
}

// LoadDir decodes every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(fsys afero.Fs, dir string) ([]Persona, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read persona dir %s: %w", dir, err)
	}

	var personas []Persona
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		file := filepath.Join(dir, e.Name())
		data, err := afero.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read persona %s: %w", file, err)
		}
		p, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode persona %s: %w", file, err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}

func builtinPersonas() ([]Persona, error) {
	entries, err := fs.ReadDir(builtinFS, "data")
	if err != nil {
		return nil, fmt.Errorf("read builtin personas: %w", err)
	}
	personas := make([]Persona, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			return nil, err
		}
		p, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode builtin persona %s: %w", e.Name(), err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}

func decode(data []byte) (Persona, error) {
	var p Persona
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Persona{}, err
	}
	return p, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Get returns the persona registered under id.
func (r *Registry) Get(id string) (Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %s", ErrUnknownPersona, id)
	}
	p.Examples = slices.Clone(p.Examples)
	return p, nil
}

// IDs returns the registered persona IDs in sorted order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

// List returns all personas sorted by ID.
func (r *Registry) List() []Persona {
	out := make([]Persona, 0, len(r.ids))
	for _, id := range r.ids {
		p, _ := r.Get(id)
		out = append(out, p)
	}
	return out
}

// Len reports the number of registered personas.
func (r *Registry) Len() int { return len(r.ids) }
