/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/

// Package agent runs the persona pipeline: assemble the few-shot prompt, send
// it to the completion provider and return the raw text answer.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/muse/internal/fewshot"
	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/persona"
)

// PromptRequest is one inbound call. It lives only for the duration of Run.
type PromptRequest struct {
	Credential string
	Query      string
}

// Result is the outcome of a successful Run.
type Result struct {
	PersonaID string
	Prompt    string
	Content   string
	Duration  time.Duration
}

// ModelSource hands out a chat model authenticated for one request.
type ModelSource interface {
	Model(ctx context.Context, credential string) (*llm.GuardedModel, error)
}

// Pipeline is the generic persona pipeline. It holds only read-only data and
// is safe for concurrent use.
type Pipeline struct {
	persona persona.Persona
	models  ModelSource
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for prompt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline for p that obtains models from models.
func New(p persona.Persona, models ModelSource, opts ...Option) *Pipeline {
	pl := &Pipeline{
		persona: p,
		models:  models,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Persona returns the persona the pipeline impersonates.
func (pl *Pipeline) Persona() persona.Persona { return pl.persona }

// Prompt assembles the prompt for query without calling a provider.
func (pl *Pipeline) Prompt(ctx context.Context, query string) (string, error) {
	return fewshot.Assemble(ctx, pl.persona, query)
}

// Run executes template -> chat model -> text parser for req.
// A missing credential fails before the prompt is assembled or sent.
func (pl *Pipeline) Run(ctx context.Context, req PromptRequest) (*Result, error) {
	start := time.Now()

	chatModel, err := pl.models.Model(ctx, req.Credential)
	if err != nil {
		return nil, err
	}

	var assembled string
	tpl := fewshot.NewTemplate(pl.persona, fewshot.WithObserver(func(ctx context.Context, prompt string) {
		assembled = prompt
		pl.logger.DebugContext(ctx, "assembled prompt",
			"persona", pl.persona.ID,
			"est_tokens", llm.EstimateTokens(prompt),
			"prompt", prompt,
		)
	}))

	chain := compose.NewChain[map[string]any, string]()
	chain.
		AppendChatTemplate(tpl).
		AppendChatModel(chatModel).
		AppendLambda(compose.InvokableLambda(messageText))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile %s pipeline: %w", pl.persona.ID, err)
	}

	content, err := runnable.Invoke(ctx, fewshot.Vars(req.Query))
	if err != nil {
		if providerErr := chatModel.Err(); providerErr != nil {
			return nil, providerErr
		}
		return nil, fmt.Errorf("run %s pipeline: %w", pl.persona.ID, err)
	}

	res := &Result{
		PersonaID: pl.persona.ID,
		Prompt:    assembled,
		Content:   content,
		Duration:  time.Since(start),
	}
	pl.logger.DebugContext(ctx, "completion received",
		"persona", pl.persona.ID,
		"chars", len(content),
		"duration", res.Duration,
	)
	return res, nil
}

// messageText is the string output parser at the end of the chain.
func messageText(_ context.Context, msg *schema.Message) (string, error) {
	if msg == nil {
		return "", llm.ErrEmptyResponse
	}
	return msg.Content, nil
}
