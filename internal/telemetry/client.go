// Package telemetry sends anonymous usage events for the persona service.
// Events carry persona IDs, outcomes and timings only; queries and answers
// are never recorded.
package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// Client is the interface for telemetry clients.
// This abstraction allows for mocking in tests and swapping implementations.
type Client interface {
	// Track sends an event asynchronously. Returns immediately without blocking.
	// If telemetry is disabled, this is a no-op.
	Track(event string, properties map[string]any)

	// Close flushes pending events and closes the client.
	Close() error
}

// Properties is a type alias for event properties.
type Properties = map[string]any

// enqueuer is an internal interface for the PostHog client methods we use.
// This allows us to mock the client for testing.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient wraps the PostHog SDK for async telemetry.
type PostHogClient struct {
	client     enqueuer
	instanceID string
	version    string
	mu         sync.RWMutex
	closed     bool
}

// ClientConfig holds configuration for initializing the telemetry client.
type ClientConfig struct {
	// APIKey is the PostHog project API key. Empty disables telemetry.
	APIKey string

	// Version is the service version string.
	Version string

	// InstanceID identifies this server process anonymously.
	// A random UUID is generated when empty.
	InstanceID string

	// Endpoint is an optional custom PostHog endpoint (for self-hosted).
	// Leave empty to use the default PostHog cloud endpoint.
	Endpoint string
}

// New returns a PostHog client, or a NoopClient when no API key is configured.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 50,
		Interval:  5 * time.Second,
		// Transport warnings must not end up in the service logs on every flush.
		Logger: quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClientWithEnqueuer(client, cfg.InstanceID, cfg.Version), nil
}

// newPostHogClientWithEnqueuer creates a client with a custom enqueuer (for testing).
func newPostHogClientWithEnqueuer(enq enqueuer, instanceID, version string) *PostHogClient {
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	return &PostHogClient{
		client:     enq,
		instanceID: instanceID,
		version:    version,
	}
}

// Track sends an event asynchronously. No-op after Close.
func (c *PostHogClient) Track(event string, properties map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("service_version", c.version)
	// Anonymous events only: no person profiles.
	props.Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.instanceID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes pending events.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient is a telemetry client that does nothing.
// Used when no API key is configured.
type NoopClient struct{}

// Track is a no-op.
func (c *NoopClient) Track(event string, properties map[string]any) {}

// Close is a no-op.
func (c *NoopClient) Close() error { return nil }

// NewNoopClient returns a client that does nothing.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// quietPostHogLogger suppresses PostHog client logs.
type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
