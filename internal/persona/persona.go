// Package persona holds the persona tables that condition the few-shot prompts.
//
// A persona is data: an identity, an ordered list of example lines and the
// templates that frame them. Built-in personas are embedded YAML documents;
// operators can add or override personas with YAML files in a directory.
package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-playground/validator/v10"
)

// Template placeholders understood by the prompt assembler.
const (
	IdentityVar = "identity"
	ExampleVar  = "tweet"
	QueryVar    = "query"
)

// ErrUnknownPersona is returned when a persona ID is not registered.
var ErrUnknownPersona = errors.New("unknown persona")

// Example is one illustrative quote or lyric.
type Example struct {
	Text string `yaml:"text" json:"text" validate:"required"`
}

// Persona is a named configuration bundle the service impersonates.
// Values are never mutated after loading.
type Persona struct {
	ID              string    `yaml:"id" json:"id" validate:"required,max=64,slug"`
	Identity        string    `yaml:"identity" json:"identity" validate:"required"`
	Description     string    `yaml:"description" json:"description,omitempty"`
	Prefix          string    `yaml:"prefix" json:"prefix" validate:"required"`
	ExampleTemplate string    `yaml:"exampleTemplate" json:"exampleTemplate" validate:"required"`
	Suffix          string    `yaml:"suffix" json:"suffix" validate:"required"`
	Examples        []Example `yaml:"examples" json:"examples" validate:"required,min=1,dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return isSlug(fl.Field().String())
	})
}

func isSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Validate checks required fields and that every template carries its placeholder.
func (p Persona) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("persona %q: %w", p.ID, err)
	}
	checks := []struct {
		field, tpl, placeholder string
	}{
		{"prefix", p.Prefix, IdentityVar},
		{"exampleTemplate", p.ExampleTemplate, ExampleVar},
		{"suffix", p.Suffix, QueryVar},
	}
	for _, c := range checks {
		if !strings.Contains(c.tpl, "{"+c.placeholder+"}") {
			return fmt.Errorf("persona %q: %s must contain {%s}", p.ID, c.field, c.placeholder)
		}
		// Only the field's own placeholder may appear; anything else would
		// fail every request at render time.
		vars := map[string]any{c.placeholder: ""}
		if _, err := schema.UserMessage(c.tpl).Format(context.Background(), vars, schema.FString); err != nil {
			return fmt.Errorf("persona %q: %s accepts only {%s}: %w", p.ID, c.field, c.placeholder, err)
		}
	}
	return nil
}

// Summary is the public listing shape of a persona.
type Summary struct {
	ID           string `json:"id"`
	Identity     string `json:"identity"`
	Description  string `json:"description,omitempty"`
	ExampleCount int    `json:"exampleCount"`
}

// Summary returns the listing view of p.
func (p Persona) Summary() Summary {
	return Summary{
		ID:           p.ID,
		Identity:     p.Identity,
		Description:  p.Description,
		ExampleCount: len(p.Examples),
	}
}
