// Package fewshot assembles few-shot prompts from persona data.
package fewshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/muse/internal/persona"
)

// Separator joins the header, each example and the suffix.
const Separator = "\n\n"

// Assemble renders the prompt for p and query. The result depends only on its
// inputs. Substituted values are inserted verbatim and never re-parsed, so a
// query or example containing placeholder syntax is kept as literal text.
func Assemble(ctx context.Context, p persona.Persona, query string) (string, error) {
	header, err := render(ctx, p.Prefix, map[string]any{persona.IdentityVar: p.Identity})
	if err != nil {
		return "", fmt.Errorf("render prefix for %s: %w", p.ID, err)
	}

	parts := make([]string, 0, len(p.Examples)+2)
	parts = append(parts, header)
	for i, ex := range p.Examples {
		line, err := render(ctx, p.ExampleTemplate, map[string]any{persona.ExampleVar: ex.Text})
		if err != nil {
			return "", fmt.Errorf("render example %d for %s: %w", i, p.ID, err)
		}
		parts = append(parts, line)
	}

	suffix, err := render(ctx, p.Suffix, map[string]any{persona.QueryVar: query})
	if err != nil {
		return "", fmt.Errorf("render suffix for %s: %w", p.ID, err)
	}
	parts = append(parts, suffix)

	return strings.Join(parts, Separator), nil
}

func render(ctx context.Context, tpl string, vars map[string]any) (string, error) {
	msgs, err := schema.UserMessage(tpl).Format(ctx, vars, schema.FString)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[0].Content, nil
}

// Template adapts a persona to eino's ChatTemplate so it can head a compose chain.
// Format expects the query under the "query" variable and yields one user message
// carrying the whole assembled prompt.
type Template struct {
	persona  persona.Persona
	observer func(ctx context.Context, prompt string)
}

var _ prompt.ChatTemplate = (*Template)(nil)

// TemplateOption configures a Template.
type TemplateOption func(*Template)

// WithObserver registers fn to receive every assembled prompt before it is
// handed to the next node.
func WithObserver(fn func(ctx context.Context, prompt string)) TemplateOption {
	return func(t *Template) { t.observer = fn }
}

// NewTemplate returns a chat template for p.
func NewTemplate(p persona.Persona, opts ...TemplateOption) *Template {
	t := &Template{persona: p}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Format implements prompt.ChatTemplate.
func (t *Template) Format(ctx context.Context, vs map[string]any, _ ...prompt.Option) ([]*schema.Message, error) {
	query, err := QueryFrom(vs)
	if err != nil {
		return nil, err
	}
	text, err := Assemble(ctx, t.persona, query)
	if err != nil {
		return nil, err
	}
	if t.observer != nil {
		t.observer(ctx, text)
	}
	return []*schema.Message{schema.UserMessage(text)}, nil
}

// Vars builds the template variables for query.
func Vars(query string) map[string]any {
	return map[string]any{persona.QueryVar: query}
}

// QueryFrom extracts the query variable from vs.
func QueryFrom(vs map[string]any) (string, error) {
	v, ok := vs[persona.QueryVar]
	if !ok {
		return "", fmt.Errorf("missing template variable %q", persona.QueryVar)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("template variable %q must be a string, got %T", persona.QueryVar, v)
	}
	return s, nil
}
