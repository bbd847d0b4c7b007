package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompleter_Complete(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "bars"}
	var creds []string
	c := llm.NewChatCompleter(llm.ProviderOpenAI, llmtest.Factory(fake, &creds))

	got, err := c.Complete(context.Background(), "sk-test", "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "bars", got)
	assert.Equal(t, []string{"sk-test"}, creds)
	assert.Equal(t, []string{"the prompt"}, fake.Prompts())
	require.Len(t, fake.Calls()[0], 1, "single-turn request")
}

func TestChatCompleter_MissingCredential(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "unused"}
	var creds []string
	c := llm.NewChatCompleter(llm.ProviderOpenAI, llmtest.Factory(fake, &creds))

	_, err := c.Complete(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMissingCredential))
	assert.Empty(t, creds, "factory must not be called")
	assert.Empty(t, fake.Calls(), "provider must not be called")
}

func TestChatCompleter_OllamaNeedsNoCredential(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "local"}
	c := llm.NewChatCompleter(llm.ProviderOllama, llmtest.Factory(fake, nil))

	got, err := c.Complete(context.Background(), "", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "local", got)
}

func TestChatCompleter_ProviderFailureIsWrapped(t *testing.T) {
	quota := errors.New("429 insufficient_quota")
	fake := &llmtest.FakeChatModel{Err: quota}
	c := llmtest.Completer(fake)

	_, err := c.Complete(context.Background(), "sk", "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrProvider))
	assert.True(t, errors.Is(err, quota))
	assert.Len(t, fake.Calls(), 1, "no retry")
}

func TestChatCompleter_FactoryFailure(t *testing.T) {
	boom := errors.New("dial failed")
	c := llm.NewChatCompleter(llm.ProviderOpenAI, func(context.Context, string) (model.BaseChatModel, error) {
		return nil, boom
	})

	_, err := c.Complete(context.Background(), "sk", "prompt")
	assert.True(t, errors.Is(err, llm.ErrProvider))
	assert.True(t, errors.Is(err, boom))
}

func TestGuardedModel_RecordsFirstError(t *testing.T) {
	fake := &llmtest.FakeChatModel{Err: errors.New("first")}
	m, err := llmtest.Completer(fake).Model(context.Background(), "sk")
	require.NoError(t, err)
	assert.NoError(t, m.Err())

	_, _ = m.Generate(context.Background(), nil)
	fake.Err = errors.New("second")
	_, _ = m.Generate(context.Background(), nil)

	require.Error(t, m.Err())
	assert.Contains(t, m.Err().Error(), "first")
}
