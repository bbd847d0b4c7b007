package telemetry

import "time"

// Event names
const (
	EventPersonaCompletion = "persona_completion"
	EventServerStart       = "server_start"
)

// Outcome labels for EventPersonaCompletion.
const (
	OutcomeSuccess       = "success"
	OutcomeClientError   = "client_error"
	OutcomeAuthError     = "auth_error"
	OutcomeProviderError = "provider_error"
	OutcomeInternalError = "internal_error"
)

// CompletionProps builds the properties of a persona_completion event.
func CompletionProps(personaID, method, outcome string, d time.Duration) Properties {
	return Properties{
		"persona":     personaID,
		"method":      method,
		"outcome":     outcome,
		"success":     outcome == OutcomeSuccess,
		"duration_ms": d.Milliseconds(),
	}
}
