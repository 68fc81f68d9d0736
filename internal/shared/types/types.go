// Package types holds the service contracts shared between the registry,
// the providers and the API surfaces.
package types

import "net/http"

// Category represents service categories.
type Category string

const (
	CategoryGraph      Category = "graph"
	CategoryFilesystem Category = "filesystem"
)

// Service represents a service definition.
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents a service tool.
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context provides execution context for tool calls. The request/response
// pair, when present, is attached to the graph root for handler values to
// read; it never affects resolution.
type Context struct {
	RequestID string              `json:"request_id,omitempty"`
	Request   *http.Request       `json:"-"`
	Response  http.ResponseWriter `json:"-"`
}

// Result represents a tool execution result.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// Success builds an affirmative result.
func Success(data map[string]interface{}) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure builds a failed result carrying a message.
func Failure(message string) (*Result, error) {
	return &Result{Success: false, Error: &message}, nil
}
