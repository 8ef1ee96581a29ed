package ai

import (
	"context"
	"sync"

	"github.com/k1w1proplus/chat-backend/internal/settings"
)

// Service resolves each user's stored API key into a client lazily, on the
// first command after the key is saved. The key never leaves the process
// except toward the vendor endpoint.
type Service struct {
	settings *settings.Repo
	baseURL  string
	model    string

	mu      sync.Mutex
	clients map[string]*GeminiClient // keyed by api key
}

func NewService(st *settings.Repo, baseURL, model string) *Service {
	return &Service{
		settings: st,
		baseURL:  baseURL,
		model:    model,
		clients:  make(map[string]*GeminiClient),
	}
}

// Generate runs a completion on behalf of uid using their stored key.
func (s *Service) Generate(ctx context.Context, uid, prompt string) (string, error) {
	key, err := s.settings.Get(ctx, uid, settings.KeyAIAPIKey)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return s.client(key).Generate(ctx, prompt)
}

func (s *Service) client(apiKey string) *GeminiClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[apiKey]
	if !ok {
		c = NewGeminiClient(apiKey, s.baseURL, s.model)
		s.clients[apiKey] = c
	}
	return c
}
