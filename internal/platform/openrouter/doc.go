// Package openrouter implements a client for the OpenRouter chat completions
// API. It builds two-message (system + user) payloads with a structured
// response format, retries transient failures with linearly increasing
// backoff, and surfaces provider errors as a distinct APIError type carrying
// the provider-supplied error code and HTTP status.
package openrouter
