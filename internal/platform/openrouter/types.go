package openrouter

import (
	"encoding/json"
	"fmt"
)

// ModelParameters holds the tunable generation parameters sent with each
// chat request. Nil fields are omitted from the payload; merging parameters
// only overrides the fields that are set.
type ModelParameters struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// DefaultModelParameters returns the parameter set used when the caller does
// not override anything: temperature 0.7, top_p 1, both penalties 0.
func DefaultModelParameters() ModelParameters {
	temperature := 0.7
	topP := 1.0
	zero := 0.0
	return ModelParameters{
		Temperature:      &temperature,
		TopP:             &topP,
		FrequencyPenalty: &zero,
		PresencePenalty:  &zero,
	}
}

// merge returns a copy of p with all non-nil fields of override applied.
func (p ModelParameters) merge(override ModelParameters) ModelParameters {
	if override.Temperature != nil {
		p.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		p.MaxTokens = override.MaxTokens
	}
	if override.TopP != nil {
		p.TopP = override.TopP
	}
	if override.FrequencyPenalty != nil {
		p.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		p.PresencePenalty = override.PresencePenalty
	}
	return p
}

// ChatMessage is a single message in the chat payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchemaFormat names the schema the provider must conform its output to.
type JSONSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// ResponseFormat instructs the provider to return structured output.
// Type is always "json_schema" for this application.
type ResponseFormat struct {
	Type       string           `json:"type"`
	JSONSchema JSONSchemaFormat `json:"json_schema"`
}

// valid reports whether the format descriptor is well-formed.
func (f ResponseFormat) valid() bool {
	return f.Type != "" && f.JSONSchema.Name != "" && len(f.JSONSchema.Schema) > 0
}

// chatPayload is the request body sent to the chat completions endpoint.
// Model parameters are embedded so they marshal as top-level fields.
type chatPayload struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	ModelParameters
}

// ChatResponse is the parsed provider response.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion alternative in a ChatResponse.
type Choice struct {
	Index        int              `json:"index"`
	FinishReason string           `json:"native_finish_reason"`
	Message      AssistantMessage `json:"message"`
}

// AssistantMessage is the model's reply within a choice.
type AssistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError is the single error type surfaced by the client. Code carries the
// provider-supplied error code when present and Status the HTTP status of the
// failed response; both are zero-valued for transport-level failures.
type APIError struct {
	Message string
	Code    string
	Status  int
	cause   error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("openrouter: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("openrouter: %s", e.Message)
}

// Unwrap exposes the underlying transport or decoding error, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}
