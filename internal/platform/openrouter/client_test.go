package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDoer replays a scripted sequence of responses/errors and records every
// request it receives.
type stubDoer struct {
	responses []stubResponse
	requests  []capturedRequest
}

type stubResponse struct {
	status int
	body   string
	err    error
}

type capturedRequest struct {
	authorization string
	contentType   string
	body          string
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	d.requests = append(d.requests, capturedRequest{
		authorization: req.Header.Get("Authorization"),
		contentType:   req.Header.Get("Content-Type"),
		body:          string(body),
	})

	idx := len(d.requests) - 1
	if idx >= len(d.responses) {
		idx = len(d.responses) - 1
	}
	r := d.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func testResponseFormat() ResponseFormat {
	return ResponseFormat{
		Type: "json_schema",
		JSONSchema: JSONSchemaFormat{
			Name:   "flashcard_proposals",
			Strict: true,
			Schema: json.RawMessage(`{"type":"object"}`),
		},
	}
}

// newTestClient builds a client with an instant sleeper and the given
// scripted transport.
func newTestClient(t *testing.T, doer *stubDoer) (*Client, *[]time.Duration) {
	t.Helper()

	client, err := NewClient(Config{
		APIKey:         "test-key",
		Model:          "openai/gpt-4o-mini",
		ResponseFormat: testResponseFormat(),
		HTTPClient:     doer,
	})
	require.NoError(t, err)

	var delays []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return client, &delays
}

const successBody = `{
	"id": "gen-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "openai/gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"flashcards\":[]}"}}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid_config",
			cfg: Config{
				APIKey:         "key",
				Model:          "openai/gpt-4o-mini",
				ResponseFormat: testResponseFormat(),
			},
		},
		{
			name: "missing_api_key",
			cfg: Config{
				Model:          "openai/gpt-4o-mini",
				ResponseFormat: testResponseFormat(),
			},
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "missing_model",
			cfg: Config{
				APIKey:         "key",
				ResponseFormat: testResponseFormat(),
			},
			wantErr: ErrEmptyModelName,
		},
		{
			name: "missing_response_format",
			cfg: Config{
				APIKey: "key",
				Model:  "openai/gpt-4o-mini",
			},
			wantErr: ErrInvalidResponseFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, client)

			// Defaults are applied for omitted fields.
			assert.Equal(t, DefaultEndpoint, client.endpoint)
			assert.Equal(t, DefaultMaxAttempts, client.maxAttempts)
			assert.Equal(t, DefaultRetryDelay, client.retryDelay)

			_, params := client.ModelConfiguration()
			require.NotNil(t, params.Temperature)
			assert.InDelta(t, 0.7, *params.Temperature, 0.0001)
			require.NotNil(t, params.TopP)
			assert.InDelta(t, 1.0, *params.TopP, 0.0001)
			require.NotNil(t, params.FrequencyPenalty)
			assert.Zero(t, *params.FrequencyPenalty)
			require.NotNil(t, params.PresencePenalty)
			assert.Zero(t, *params.PresencePenalty)
			assert.Nil(t, params.MaxTokens)
		})
	}
}

func TestSendChatRequest_Success(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{responses: []stubResponse{{status: http.StatusOK, body: successBody}}}
	client, delays := newTestClient(t, doer)

	resp, err := client.SendChatRequest(context.Background(), "Generate flashcards from this text")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "gen-1", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"flashcards":[]}`, resp.Choices[0].Message.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	// A single success makes exactly one transport call and never sleeps.
	require.Len(t, doer.requests, 1)
	assert.Empty(t, *delays)

	req := doer.requests[0]
	assert.Equal(t, "Bearer test-key", req.authorization)
	assert.Equal(t, "application/json", req.contentType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &payload))
	assert.Equal(t, "openai/gpt-4o-mini", payload["model"])
	assert.InDelta(t, 0.7, payload["temperature"].(float64), 0.0001)
	assert.InDelta(t, 1.0, payload["top_p"].(float64), 0.0001)

	messages, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, DefaultSystemMessage, system["content"])
	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "Generate flashcards from this text", user["content"])

	format, ok := payload["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
}

func TestSendChatRequest_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{responses: []stubResponse{
		{err: errors.New("connection refused")},
		{status: http.StatusBadGateway, body: `{"error":{"message":"upstream unavailable"}}`},
		{status: http.StatusOK, body: successBody},
	}}
	client, delays := newTestClient(t, doer)

	resp, err := client.SendChatRequest(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", resp.ID)

	// Two failures then a success: exactly three transport calls with
	// linearly increasing backoff between them.
	assert.Len(t, doer.requests, 3)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
}

func TestSendChatRequest_AllAttemptsFail(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusTooManyRequests, body: `{"error":{"message":"rate limited","code":"rate_limit"}}`},
	}}
	client, _ := newTestClient(t, doer)

	resp, err := client.SendChatRequest(context.Background(), "text")
	assert.Nil(t, resp)
	require.Error(t, err)

	// Only the final attempt's failure surfaces, as an APIError carrying
	// the provider code and HTTP status.
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rate limited", apiErr.Message)
	assert.Equal(t, "rate_limit", apiErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Len(t, doer.requests, DefaultMaxAttempts)
}

func TestSendChatRequest_TransportErrorWrapped(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("dial tcp: connection refused")
	doer := &stubDoer{responses: []stubResponse{{err: dialErr}}}
	client, _ := newTestClient(t, doer)

	_, err := client.SendChatRequest(context.Background(), "text")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.ErrorIs(t, err, dialErr)
}

func TestSendChatRequest_MalformedSuccessBodyRetried(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusOK, body: `{"truncated`},
		{status: http.StatusOK, body: successBody},
	}}
	client, _ := newTestClient(t, doer)

	resp, err := client.SendChatRequest(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", resp.ID)
	assert.Len(t, doer.requests, 2)
}

func TestSendChatRequest_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{responses: []stubResponse{{status: http.StatusInternalServerError, body: `{}`}}}
	client, _ := newTestClient(t, doer)
	client.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := client.SendChatRequest(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, doer.requests, 1)
}

func TestMutators(t *testing.T) {
	t.Parallel()

	newClient := func(t *testing.T) *Client {
		client, err := NewClient(Config{
			APIKey:         "key",
			Model:          "openai/gpt-4o-mini",
			ResponseFormat: testResponseFormat(),
		})
		require.NoError(t, err)
		return client
	}

	t.Run("set_system_message", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		require.NoError(t, client.SetSystemMessage("You create flashcards."))
		assert.ErrorIs(t, client.SetSystemMessage(""), ErrEmptySystemMessage)
	})

	t.Run("set_response_format", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		require.NoError(t, client.SetResponseFormat(testResponseFormat()))

		assert.ErrorIs(t, client.SetResponseFormat(ResponseFormat{}), ErrInvalidResponseFormat)
		assert.ErrorIs(t, client.SetResponseFormat(ResponseFormat{
			Type: "json_schema",
			JSONSchema: JSONSchemaFormat{
				Strict: true,
				Schema: json.RawMessage(`{}`),
			},
		}), ErrInvalidResponseFormat)
	})

	t.Run("set_model_parameters_merges", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		temperature := 0.2
		maxTokens := 512
		require.NoError(t, client.SetModelParameters("anthropic/claude-3.5-sonnet", ModelParameters{
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		}))

		model, params := client.ModelConfiguration()
		assert.Equal(t, "anthropic/claude-3.5-sonnet", model)
		require.NotNil(t, params.Temperature)
		assert.InDelta(t, 0.2, *params.Temperature, 0.0001)
		require.NotNil(t, params.MaxTokens)
		assert.Equal(t, 512, *params.MaxTokens)
		// Unspecified parameters keep their previous values.
		require.NotNil(t, params.TopP)
		assert.InDelta(t, 1.0, *params.TopP, 0.0001)
	})

	t.Run("set_model_parameters_empty_name", func(t *testing.T) {
		t.Parallel()
		client := newClient(t)

		assert.ErrorIs(t, client.SetModelParameters("", ModelParameters{}), ErrEmptyModelName)
	})
}

// concurrentDoer is a goroutine-safe transport returning the same success
// body for every request.
type concurrentDoer struct {
	mu    sync.Mutex
	calls int
}

func (d *concurrentDoer) Do(_ *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(successBody)),
	}, nil
}

// TestSendChatRequest_ConcurrentWithMutators exercises requests racing the
// configuration mutators. The payload must snapshot the response format
// under the lock, so running this with -race is the real assertion.
func TestSendChatRequest_ConcurrentWithMutators(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{
		APIKey:         "test-key",
		Model:          "openai/gpt-4o-mini",
		ResponseFormat: testResponseFormat(),
		HTTPClient:     &concurrentDoer{},
	})
	require.NoError(t, err)

	altFormat := ResponseFormat{
		Type: "json_schema",
		JSONSchema: JSONSchemaFormat{
			Name:   "alternate",
			Strict: true,
			Schema: json.RawMessage(`{"type":"object","additionalProperties":false}`),
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := client.SendChatRequest(context.Background(), "concurrent request")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, client.SetResponseFormat(altFormat))
			assert.NoError(t, client.SetSystemMessage("You create flashcards."))
			assert.NoError(t, client.SetModelParameters("openai/gpt-4o-mini", ModelParameters{}))
		}()
	}
	wg.Wait()
}
