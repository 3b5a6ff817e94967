package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pawelm/fiszki-api/internal/platform/logger"
	"github.com/pawelm/fiszki-api/internal/redact"
)

// Configuration contract errors. Mutators and the constructor fail loudly on
// invalid input rather than coercing it.
var (
	ErrMissingAPIKey         = errors.New("openrouter: API key is required")
	ErrEmptyModelName        = errors.New("openrouter: model name cannot be empty")
	ErrEmptySystemMessage    = errors.New("openrouter: system message cannot be empty")
	ErrInvalidResponseFormat = errors.New("openrouter: invalid response format configuration")
)

// Defaults applied by NewClient when the corresponding Config field is unset.
const (
	DefaultEndpoint      = "https://openrouter.ai/api/v1/chat/completions"
	DefaultSystemMessage = "You are a helpful AI assistant."
	DefaultMaxAttempts   = 3
	DefaultRetryDelay    = time.Second
)

// Doer abstracts the HTTP transport so tests can inject failures without a
// network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings for constructing a Client. APIKey, Model, and
// ResponseFormat are required; everything else falls back to package
// defaults.
type Config struct {
	APIKey         string
	Endpoint       string
	Model          string
	SystemMessage  string
	ModelParams    ModelParameters
	ResponseFormat ResponseFormat

	// MaxAttempts is the total number of tries per request, including the
	// first. RetryDelay is multiplied by the attempt number between tries.
	MaxAttempts int
	RetryDelay  time.Duration

	HTTPClient Doer
	Logger     *slog.Logger
}

// Client sends chat completion requests to the OpenRouter API.
// All methods are safe for concurrent use.
type Client struct {
	apiKey      string
	endpoint    string
	httpClient  Doer
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error

	mu             sync.RWMutex
	model          string
	systemMessage  string
	modelParams    ModelParameters
	responseFormat ResponseFormat
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrEmptyModelName
	}
	if !cfg.ResponseFormat.valid() {
		return nil, ErrInvalidResponseFormat
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	systemMessage := cfg.SystemMessage
	if systemMessage == "" {
		systemMessage = DefaultSystemMessage
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		apiKey:         cfg.APIKey,
		endpoint:       endpoint,
		httpClient:     httpClient,
		maxAttempts:    maxAttempts,
		retryDelay:     retryDelay,
		logger:         log.With(slog.String("component", "openrouter_client")),
		sleep:          sleepContext,
		model:          cfg.Model,
		systemMessage:  systemMessage,
		modelParams:    DefaultModelParameters().merge(cfg.ModelParams),
		responseFormat: cfg.ResponseFormat,
	}, nil
}

// SetSystemMessage updates the system message used in chat requests.
// Returns ErrEmptySystemMessage for an empty message.
func (c *Client) SetSystemMessage(message string) error {
	if message == "" {
		return ErrEmptySystemMessage
	}
	c.mu.Lock()
	c.systemMessage = message
	c.mu.Unlock()
	return nil
}

// SetResponseFormat replaces the structured output descriptor.
// Returns ErrInvalidResponseFormat for a malformed descriptor.
func (c *Client) SetResponseFormat(format ResponseFormat) error {
	if !format.valid() {
		return ErrInvalidResponseFormat
	}
	c.mu.Lock()
	c.responseFormat = format
	c.mu.Unlock()
	return nil
}

// SetModelParameters updates the model name and merges the given parameters
// into the current set. Returns ErrEmptyModelName for an empty model name.
func (c *Client) SetModelParameters(modelName string, parameters ModelParameters) error {
	if modelName == "" {
		return ErrEmptyModelName
	}
	c.mu.Lock()
	c.model = modelName
	c.modelParams = c.modelParams.merge(parameters)
	c.mu.Unlock()
	return nil
}

// ModelConfiguration returns the current model name and parameters.
func (c *Client) ModelConfiguration() (string, ModelParameters) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model, c.modelParams
}

// SendChatRequest builds a two-message (system + user) payload merged with
// the response format and model parameters, issues the HTTP call, and
// returns the parsed response. Transport failures, non-2xx responses, and
// unparseable bodies are retried up to the configured number of attempts
// with a delay of attempt_number x retryDelay between tries; only the final
// attempt's failure is returned, always as an *APIError.
func (c *Client) SendChatRequest(ctx context.Context, userMessage string) (*ChatResponse, error) {
	c.mu.RLock()
	// Copy the response format so the marshal below reads a snapshot,
	// not a field a concurrent mutator may be writing.
	responseFormat := c.responseFormat
	payload := chatPayload{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: c.systemMessage},
			{Role: "user", Content: userMessage},
		},
		ResponseFormat:  &responseFormat,
		ModelParameters: c.modelParams,
	}
	model := c.model
	c.mu.RUnlock()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Message: "failed to encode request payload", cause: err}
	}

	log := logger.FromContextOrDefault(ctx, c.logger)

	var lastErr *APIError
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			log.Info("retrying chat request",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.maxAttempts),
				slog.String("model", model))
		}

		resp, attemptErr := c.doAttempt(ctx, body)
		if attemptErr == nil {
			return resp, nil
		}
		lastErr = attemptErr

		log.Error("chat request attempt failed",
			slog.Int("attempt", attempt),
			slog.String("model", model),
			slog.String("error", redact.Error(attemptErr)),
			slog.Int("status", attemptErr.Status))

		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.retryDelay); err != nil {
			return nil, &APIError{Message: "request canceled during retry backoff", cause: err}
		}
	}

	log.Error("all chat request attempts failed",
		slog.Int("attempts", c.maxAttempts),
		slog.String("model", model),
		slog.String("error", redact.Error(lastErr)))
	return nil, lastErr
}

// doAttempt performs one HTTP round trip and parse.
func (c *Client) doAttempt(ctx context.Context, body []byte) (*ChatResponse, *APIError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Message: "failed to build request", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: "failed to communicate with OpenRouter API", cause: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(resp)
	}

	var parsed ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &APIError{Message: "failed to decode response body", Status: resp.StatusCode, cause: err}
	}
	return &parsed, nil
}

// parseErrorResponse extracts the provider's error message and code from a
// non-2xx response body. Providers vary between a top-level {message, code}
// object and a nested {"error": {...}} envelope; both are accepted, and an
// unparseable body falls back to a generic message.
func parseErrorResponse(resp *http.Response) *APIError {
	apiErr := &APIError{Message: "API request failed", Status: resp.StatusCode}

	var body struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
		Error   struct {
			Message string          `json:"message"`
			Code    json.RawMessage `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return apiErr
	}

	if body.Message != "" {
		apiErr.Message = body.Message
	} else if body.Error.Message != "" {
		apiErr.Message = body.Error.Message
	}

	code := body.Code
	if len(code) == 0 {
		code = body.Error.Code
	}
	if len(code) > 0 {
		var s string
		if err := json.Unmarshal(code, &s); err == nil {
			apiErr.Code = s
		} else {
			apiErr.Code = string(code)
		}
	}

	return apiErr
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
