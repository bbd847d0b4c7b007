package server

import "github.com/josephgoksu/muse/internal/persona"

// QueryParam is the request parameter holding the user's question.
const QueryParam = "chatQuery"

// PersonaListResponse is the response for /api/personas
type PersonaListResponse struct {
	Personas []persona.Summary `json:"personas"`
}

// InfoResponse is the response for /api/info
type InfoResponse struct {
	Version  string   `json:"version"`
	Personas []string `json:"personas"`
}
