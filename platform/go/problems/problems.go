package problems

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails is the RFC 7807 error body returned by every handler.
type ProblemDetails struct {
	Type   *string              `json:"type,omitempty"`
	Title  string               `json:"title"`
	Status int                  `json:"status"`
	Detail *string              `json:"detail,omitempty"`
	Errors *map[string][]string `json:"errors,omitempty"`
}

// New builds a ProblemDetails with the common fields populated.
func New(title, detail, problemType string, status int) ProblemDetails {
	p := ProblemDetails{Title: title, Status: status}
	if detail != "" {
		p.Detail = &detail
	}
	if problemType != "" {
		p.Type = &problemType
	}
	return p
}

// Write serializes the problem as application/problem+json with its status code.
func Write(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
