package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSuccess(t *testing.T) {
	var gotReq messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"hello from the model"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", Model: "claude-haiku-4-5-20251001", BaseURL: server.URL})

	text, err := client.Complete(context.Background(), "say hello", 256)
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", text)

	assert.Equal(t, "claude-haiku-4-5-20251001", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "say hello", gotReq.Messages[0].Content)
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "claude-haiku-4-5-20251001"})

	_, err := client.Complete(context.Background(), "prompt", 100)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"max_tokens is too large"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), "prompt", 100)
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, "invalid_request_error", perr.Type)
	assert.Contains(t, perr.Message, "max_tokens")
}

func TestCompleteNoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), "prompt", 100)
	require.Error(t, err)
}

func TestIsBillingFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "credit balance message",
			err:  &ProviderError{StatusCode: 400, Message: "Your credit balance is too low to access the Anthropic API"},
			want: true,
		},
		{
			name: "billing keyword",
			err:  errors.New("billing account suspended"),
			want: true,
		},
		{
			name: "unrelated provider error",
			err:  &ProviderError{StatusCode: 529, Message: "Overloaded"},
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBillingFailure(tt.err))
		})
	}
}
