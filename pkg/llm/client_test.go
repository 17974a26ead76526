package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chatResponse is the minimal chat-completions body the client consumes.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		Endpoint:    server.URL + "/v1",
		Model:       "test-model",
		APIKey:      "test-key",
		Temperature: 0.3,
	}, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresEndpointAndModel(t *testing.T) {
	_, err := NewClient(&Config{Model: "m"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotModel string
	var gotMessages []map[string]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		gotMessages = req.Messages

		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = "## Themes\nDocs — 3 mentions"
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	content, err := client.Complete(context.Background(), "user prompt", "system message")
	require.NoError(t, err)
	assert.Equal(t, "## Themes\nDocs — 3 mentions", content)

	assert.Equal(t, "test-model", gotModel)
	require.Len(t, gotMessages, 2)
	assert.Equal(t, "system", gotMessages[0]["role"])
	assert.Equal(t, "system message", gotMessages[0]["content"])
	assert.Equal(t, "user", gotMessages[1]["role"])
	assert.Equal(t, "user prompt", gotMessages[1]["content"])
}

func TestCompleteStripsThinkingBlocks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Content = "<think>working it out</think>final answer"
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	content, err := client.Complete(context.Background(), "p", "s")
	require.NoError(t, err)
	assert.Equal(t, "final answer", content)
}

func TestCompleteClassifiesNon2xxAsTransport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "upstream exploded"}}`, http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), "p", "s")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTransport, GetErrorType(err))
}

func TestCompleteClassifiesMissingChoicesAsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Complete(context.Background(), "p", "s")
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
}

func TestCompleteClassifiesEmptyContentAsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  "}}]}`))
	})

	_, err := client.Complete(context.Background(), "p", "s")
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
}

func TestCompleteClassifiesConnectionFailureAsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	client, err := NewClient(&Config{Endpoint: url, Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "p", "s")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTransport, GetErrorType(err))
}
