package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimvalue/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "test-engine", "https://api.example.com", 100)

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, "test-engine", client.engineID)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.True(t, client.Configured())
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient("", "", "https://api.example.com", 100).Configured())
	assert.False(t, NewClient("key", "", "https://api.example.com", 100).Configured())
	assert.False(t, NewClient("", "engine", "https://api.example.com", 100).Configured())
	assert.True(t, NewClient("key", "engine", "https://api.example.com", 100).Configured())
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
	}
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "samsung 65 tv", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-engine", r.URL.Query().Get("cx"))
		assert.Equal(t, "10", r.URL.Query().Get("num"))

		response := searchResponse{
			Items: []searchItem{
				{Title: "Samsung 65\" TV", Link: "https://www.bestbuy.com/site/tv/1.p", Snippet: "65 inch QLED"},
				{Title: "Samsung TV deal", Link: "https://www.walmart.com/ip/2", Snippet: "rollback"},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-key", "test-engine", server.URL, 100)

	results, err := client.Search(context.Background(), "samsung 65 tv", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.bestbuy.com/site/tv/1.p", results[0].Link)
	assert.Equal(t, "Samsung TV deal", results[1].Title)
}

func TestSearch_MissingCredentials(t *testing.T) {
	client := NewClient("", "", "https://api.example.com", 100)

	_, err := client.Search(context.Background(), "anything", 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSearchAPIFailure)
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("bad-key", "test-engine", server.URL, 100)

	_, err := client.Search(context.Background(), "anything", 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSearchAPIFailure)
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestSearch_ServerErrorRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{
			Items: []searchItem{{Title: "ok", Link: "https://www.target.com/p/1"}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "test-engine", server.URL, 100)

	results, err := client.Search(context.Background(), "anything", 10)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, results, 1)
}

func TestSearch_EmptyItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := NewClient("test-key", "test-engine", server.URL, 100)

	results, err := client.Search(context.Background(), "obscure item", 10)

	require.NoError(t, err)
	assert.Empty(t, results, "zero hits is a valid empty result, not an error")
}
