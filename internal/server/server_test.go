package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/josephgoksu/muse/internal/agent"
	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/llm/llmtest"
	"github.com/josephgoksu/muse/internal/persona"
	"github.com/josephgoksu/muse/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTelemetry struct {
	mu     sync.Mutex
	events []telemetry.Properties
}

func (r *recordingTelemetry) Track(event string, props map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event == telemetry.EventPersonaCompletion {
		r.events = append(r.events, props)
	}
}

func (r *recordingTelemetry) Close() error { return nil }

func newTestServer(t *testing.T, fake *llmtest.FakeChatModel, secret SecretSource, opts ...Option) *Server {
	t.Helper()
	reg, err := persona.Builtin()
	require.NoError(t, err)
	agents := agent.NewSet(reg, llmtest.Completer(fake))
	return New(Config{Port: 5001, Origins: []string{"http://localhost:3000"}, Version: "test"}, agents, secret, opts...)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandlePersona_GetRendersHTML(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "Hustle harder\nthen rest"}
	s := newTestServer(t, fake, StaticSecret("sk-test"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=write+a+verse+about+hustling", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Hustle harder\nthen rest")
	assert.Contains(t, rec.Body.String(), "<title>Yeezus</title>")

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.True(t, strings.HasPrefix(prompts[0], "You are Yeezus and you are genius lyricist"))
	assert.True(t, strings.HasSuffix(prompts[0], "User: write a verse about hustling\n    Answer:"))
}

func TestHandlePersona_MethodInvariance(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	s := newTestServer(t, fake, StaticSecret("sk-test"))

	get := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/taylor?chatQuery=autumn", nil))
	post := do(t, s, httptest.NewRequest(http.MethodPost, "/agents/taylor?chatQuery=autumn", nil))

	require.Equal(t, http.StatusOK, get.Code)
	require.Equal(t, http.StatusOK, post.Code)
	assert.Equal(t, get.Body.String(), post.Body.String())

	prompts := fake.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, prompts[0], prompts[1])
}

func TestHandlePersona_PostForm(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	s := newTestServer(t, fake, StaticSecret("sk-test"))

	form := url.Values{QueryParam: {"from the body"}}
	req := httptest.NewRequest(http.MethodPost, "/agents/taylor", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.Prompts(), 1)
	assert.True(t, strings.HasSuffix(fake.Prompts()[0], "User: from the body\n    Answer:"))
}

func TestHandlePersona_QueryStringWinsOverForm(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	s := newTestServer(t, fake, StaticSecret("sk-test"))

	form := url.Values{QueryParam: {"body"}}
	req := httptest.NewRequest(http.MethodPost, "/agents/kanye?chatQuery=url", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(fake.Prompts()[0], "User: url\n    Answer:"))
}

func TestHandlePersona_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		secret   SecretSource
		modelErr error
		status   int
		calls    int
	}{
		{name: "unknown persona", target: "/agents/drake?chatQuery=hi", secret: StaticSecret("sk"), status: http.StatusNotFound},
		{name: "missing query", target: "/agents/kanye", secret: StaticSecret("sk"), status: http.StatusBadRequest},
		{name: "missing credential", target: "/agents/kanye?chatQuery=hi", secret: StaticSecret(""), status: http.StatusUnauthorized},
		{name: "no secret source", target: "/agents/kanye?chatQuery=hi", secret: nil, status: http.StatusUnauthorized},
		{
			name: "secret lookup fails", target: "/agents/kanye?chatQuery=hi",
			secret: SecretFunc(func(context.Context) (string, error) { return "", errors.New("vault down") }),
			status: http.StatusUnauthorized,
		},
		{name: "provider failure", target: "/agents/taylor?chatQuery=hi", secret: StaticSecret("sk"), modelErr: errors.New("rate limited"), status: http.StatusBadGateway, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &llmtest.FakeChatModel{Reply: "ok", Err: tt.modelErr}
			s := newTestServer(t, fake, tt.secret)

			rec := do(t, s, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
			assert.Len(t, fake.Calls(), tt.calls)
		})
	}
}

func TestHandlePersona_ProviderErrorNotLeaked(t *testing.T) {
	fake := &llmtest.FakeChatModel{Err: errors.New("upstream said sk-secret-123 is invalid")}
	s := newTestServer(t, fake, StaticSecret("sk-secret-123"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=hi", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-secret-123")
}

func TestHandlePersona_EmptyQueryPassesThrough(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	s := newTestServer(t, fake, StaticSecret("sk"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.Prompts(), 1)
	assert.True(t, strings.HasSuffix(fake.Prompts()[0], "User: \n    Answer:"))
}

func TestHandlePersona_EscapesModelOutput(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: `<script>alert("x")</script>`}
	s := newTestServer(t, fake, StaticSecret("sk"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=hi", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestHandlePersona_IgnoresClientCredential(t *testing.T) {
	var creds []string
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	reg, err := persona.Builtin()
	require.NoError(t, err)
	completer := llm.NewChatCompleter(llm.ProviderOpenAI, llmtest.Factory(fake, &creds))
	s := New(Config{Port: 5001}, agent.NewSet(reg, completer), StaticSecret("server-key"))

	req := httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=hi&apiKey=client-key", nil)
	req.Header.Set("Authorization", "Bearer client-key")
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"server-key"}, creds)
}

func TestHandlePersona_TracksOutcome(t *testing.T) {
	rt := &recordingTelemetry{}
	fake := &llmtest.FakeChatModel{Reply: "ok"}
	s := newTestServer(t, fake, StaticSecret("sk"), WithTelemetry(rt))

	do(t, s, httptest.NewRequest(http.MethodPost, "/agents/taylor?chatQuery=hi", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/agents/taylor", nil))

	require.Len(t, rt.events, 2)
	assert.Equal(t, "taylor", rt.events[0]["persona"])
	assert.Equal(t, http.MethodPost, rt.events[0]["method"])
	assert.Equal(t, telemetry.OutcomeSuccess, rt.events[0]["outcome"])
	assert.Equal(t, telemetry.OutcomeClientError, rt.events[1]["outcome"])
	for _, e := range rt.events {
		assert.NotContains(t, e, "query")
	}
}

func TestHandleListPersonas(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, StaticSecret("sk"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PersonaListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Personas, 2)
	assert.Equal(t, "kanye", resp.Personas[0].ID)
	assert.Equal(t, 25, resp.Personas[0].ExampleCount)
	assert.Equal(t, "taylor", resp.Personas[1].ID)
	assert.Equal(t, 20, resp.Personas[1].ExampleCount)
}

func TestHandleInfoAndHealth(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, StaticSecret("sk"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, []string{"kanye", "taylor"}, info.Personas)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, StaticSecret("sk"))
	rec := do(t, s, httptest.NewRequest(http.MethodDelete, "/agents/kanye?chatQuery=hi", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, StaticSecret("sk"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "8f14e45f-ceea-467f-a8f3-3ff3e2c6a2b1")
	rec = do(t, s, req)
	assert.Equal(t, "8f14e45f-ceea-467f-a8f3-3ff3e2c6a2b1", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = do(t, s, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, StaticSecret("sk"))

	req := httptest.NewRequest(http.MethodOptions, "/agents/kanye", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := do(t, s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/agents/kanye", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	s := newTestServer(t, &llmtest.FakeChatModel{}, SecretFunc(func(context.Context) (string, error) {
		panic("secret store exploded")
	}))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/agents/kanye?chatQuery=hi", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
