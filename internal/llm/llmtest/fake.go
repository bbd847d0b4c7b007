// Package llmtest provides an in-memory chat model for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/muse/internal/llm"
)

// FakeChatModel records every prompt it receives and answers with Reply or Err.
type FakeChatModel struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls [][]*schema.Message
}

var _ model.BaseChatModel = (*FakeChatModel)(nil)

// Generate implements model.BaseChatModel.
func (f *FakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.calls = append(f.calls, input)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return schema.AssistantMessage(f.Reply, nil), nil
}

// Stream implements model.BaseChatModel.
func (f *FakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// Calls returns the message lists passed to Generate.
func (f *FakeChatModel) Calls() [][]*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]*schema.Message(nil), f.calls...)
}

// Prompts returns the content of the single user message of every call.
func (f *FakeChatModel) Prompts() []string {
	var out []string
	for _, msgs := range f.Calls() {
		if len(msgs) > 0 {
			out = append(out, msgs[len(msgs)-1].Content)
		}
	}
	return out
}

// Factory returns a ModelFactory serving m and recording credentials.
func Factory(m model.BaseChatModel, credentials *[]string) llm.ModelFactory {
	var mu sync.Mutex
	return func(_ context.Context, credential string) (model.BaseChatModel, error) {
		if credentials != nil {
			mu.Lock()
			*credentials = append(*credentials, credential)
			mu.Unlock()
		}
		return m, nil
	}
}

// Completer returns an OpenAI-flavoured ChatCompleter backed by m.
func Completer(m model.BaseChatModel) *llm.ChatCompleter {
	return llm.NewChatCompleter(llm.ProviderOpenAI, Factory(m, nil))
}
