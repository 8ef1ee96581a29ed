package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1w1proplus/chat-backend/internal/settings"
)

func fakeGemini(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-pro:generateContent")
		assert.NotEmpty(t, r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		_ = json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content generateContent `json:"content"`
			}{
				{Content: generateContent{Parts: []generatePart{{Text: answer}}}},
			},
		})
	}))
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := fakeGemini(t, "the answer is 42")
	defer srv.Close()

	client := NewGeminiClient("test-key", srv.URL, "gemini-pro")
	out, err := client.Generate(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "the answer is 42", out)
}

func TestGeminiClient_MissingKey(t *testing.T) {
	client := NewGeminiClient("", "", "")
	_, err := client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("bad-key", srv.URL, "gemini-pro")
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorContains(t, err, "API key not valid")
}

func TestGeminiClient_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", srv.URL, "gemini-pro")
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
}

func setupService(t *testing.T, baseURL string) (*Service, *settings.Repo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st := settings.NewRepo(client)
	return NewService(st, baseURL, "gemini-pro"), st
}

func TestService_RequiresStoredKey(t *testing.T) {
	svc, _ := setupService(t, "http://unused.invalid")

	_, err := svc.Generate(context.Background(), "u1", "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestService_UsesStoredKeyLazily(t *testing.T) {
	srv := fakeGemini(t, "hi there")
	defer srv.Close()

	svc, st := setupService(t, srv.URL)
	require.NoError(t, st.Set(context.Background(), "u1", settings.KeyAIAPIKey, "stored-key"))

	out, err := svc.Generate(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)

	// Same key reuses the cached client.
	_, err = svc.Generate(context.Background(), "u1", "again")
	require.NoError(t, err)
	assert.Len(t, svc.clients, 1)
}
