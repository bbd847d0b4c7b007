package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrMissingCredential is the authentication failure raised before any
	// network call when a provider that needs an API key gets none.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrProvider wraps every transport, authentication or quota failure
	// reported by the completion provider.
	ErrProvider = errors.New("completion provider failed")

	// ErrEmptyResponse is returned when the provider answers without a message.
	ErrEmptyResponse = errors.New("empty completion response")
)

// ModelFactory builds a chat model authenticated with credential.
type ModelFactory func(ctx context.Context, credential string) (model.BaseChatModel, error)

// NewModelFactory returns a factory that builds models from cfg, replacing
// the API key with the per-request credential.
func NewModelFactory(cfg Config) ModelFactory {
	return func(ctx context.Context, credential string) (model.BaseChatModel, error) {
		return NewChatModel(ctx, cfg.WithAPIKey(credential))
	}
}

// Completer submits a single-turn prompt and returns the full text answer.
type Completer interface {
	Complete(ctx context.Context, credential, prompt string) (string, error)
}

// ChatCompleter is the Completer backed by an Eino chat model. It performs no
// retry and no backoff; provider failures are returned wrapped in ErrProvider.
type ChatCompleter struct {
	provider Provider
	factory  ModelFactory
}

// NewChatCompleter creates a completer for provider using factory.
func NewChatCompleter(provider Provider, factory ModelFactory) *ChatCompleter {
	return &ChatCompleter{provider: provider, factory: factory}
}

// Model returns a chat model for credential whose failures are wrapped in
// ErrProvider and recorded on the returned model.
func (c *ChatCompleter) Model(ctx context.Context, credential string) (*GuardedModel, error) {
	if RequiresCredential(c.provider) && credential == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingCredential, c.provider)
	}
	m, err := c.factory(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create model: %w", ErrProvider, err)
	}
	return &GuardedModel{inner: m}, nil
}

// Complete implements Completer as one standalone call. Persona pipelines
// use Model instead so the guarded model can sit inside a compose chain.
func (c *ChatCompleter) Complete(ctx context.Context, credential, prompt string) (string, error) {
	m, err := c.Model(ctx, credential)
	if err != nil {
		return "", err
	}
	resp, err := m.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GuardedModel wraps a chat model for one request. It keeps the first
// provider error so callers can recover the typed failure after it has passed
// through a compose graph.
type GuardedModel struct {
	inner model.BaseChatModel
	err   error
}

var _ model.BaseChatModel = (*GuardedModel)(nil)

// Generate implements model.BaseChatModel.
func (g *GuardedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	resp, err := g.inner.Generate(ctx, input, opts...)
	if err != nil {
		return nil, g.fail(err)
	}
	if resp == nil {
		return nil, g.fail(ErrEmptyResponse)
	}
	return resp, nil
}

// Stream implements model.BaseChatModel.
func (g *GuardedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, err := g.inner.Stream(ctx, input, opts...)
	if err != nil {
		return nil, g.fail(err)
	}
	return sr, nil
}

// Err returns the first provider failure seen by the model, if any.
func (g *GuardedModel) Err() error { return g.err }

func (g *GuardedModel) fail(err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrProvider, err)
	if g.err == nil {
		g.err = wrapped
	}
	return wrapped
}
