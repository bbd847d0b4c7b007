package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/josephgoksu/muse/internal/agent"
	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/persona"
	"github.com/josephgoksu/muse/internal/render"
	"github.com/josephgoksu/muse/internal/telemetry"
)

var errMissingQuery = fmt.Errorf("missing %s parameter", QueryParam)

// handlePersona runs the persona pipeline for GET and POST alike and renders
// the answer as HTML.
func (s *Server) handlePersona(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("persona")

	pl, err := s.agents.Get(id)
	if err != nil {
		s.writeError(w, r, id, start, err)
		return
	}

	query, ok := chatQuery(r)
	if !ok {
		s.writeError(w, r, id, start, errMissingQuery)
		return
	}

	res, err := pl.Run(r.Context(), agent.PromptRequest{
		Credential: CredentialFrom(r.Context()),
		Query:      query,
	})
	if err != nil {
		s.writeError(w, r, id, start, err)
		return
	}

	s.track(id, r.Method, telemetry.OutcomeSuccess, start)
	s.logger.InfoContext(r.Context(), "persona completion",
		"persona", id,
		"method", r.Method,
		"request_id", RequestIDFrom(r.Context()),
		"duration", res.Duration,
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, pl.Persona().Identity, res.Content); err != nil {
		s.logger.ErrorContext(r.Context(), "render failed", "persona", id, "error", err)
	}
}

// chatQuery returns the first chatQuery value and whether it was supplied.
// The URL query string wins over a form-encoded POST body.
func chatQuery(r *http.Request) (string, bool) {
	if vs, ok := r.URL.Query()[QueryParam]; ok && len(vs) > 0 {
		return vs[0], true
	}
	if r.Method != http.MethodPost {
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	if vs, ok := r.PostForm[QueryParam]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// statusFor maps pipeline failures to HTTP status codes and telemetry outcomes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, persona.ErrUnknownPersona):
		return http.StatusNotFound, telemetry.OutcomeClientError
	case errors.Is(err, errMissingQuery):
		return http.StatusBadRequest, telemetry.OutcomeClientError
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusUnauthorized, telemetry.OutcomeAuthError
	case errors.Is(err, llm.ErrProvider), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway, telemetry.OutcomeProviderError
	default:
		return http.StatusInternalServerError, telemetry.OutcomeInternalError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, id string, start time.Time, err error) {
	status, outcome := statusFor(err)

	msg := err.Error()
	switch status {
	case http.StatusUnauthorized:
		msg = "no provider credential is configured for this server"
	case http.StatusBadGateway:
		msg = "the language model provider failed to answer"
	case http.StatusInternalServerError:
		msg = "internal error"
	}

	if status != http.StatusNotFound {
		s.track(id, r.Method, outcome, start)
	}
	s.logger.WarnContext(r.Context(), "persona request failed",
		"persona", id,
		"status", status,
		"request_id", RequestIDFrom(r.Context()),
		"error", err,
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = render.HTML(w, http.StatusText(status), msg)
}

func (s *Server) track(id, method, outcome string, start time.Time) {
	s.telemetry.Track(telemetry.EventPersonaCompletion, telemetry.CompletionProps(id, method, outcome, time.Since(start)))
}

// handleListPersonas
func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	resp := PersonaListResponse{Personas: []persona.Summary{}}
	for _, id := range s.agents.IDs() {
		pl, err := s.agents.Get(id)
		if err != nil {
			continue
		}
		resp.Personas = append(resp.Personas, pl.Persona().Summary())
	}
	writeAPIJSON(w, resp)
}

// handleInfo
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, InfoResponse{
		Version:  s.version,
		Personas: s.agents.IDs(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, map[string]string{"status": "ok"})
}

func writeAPIJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
