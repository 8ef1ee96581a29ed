package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const aiCommandPrefix = "/ai "

var ErrNoActiveProject = errors.New("no active project selected")

// Completer produces a single-turn AI completion on behalf of a user. The
// uid selects which stored API key pays for the call.
type Completer interface {
	Generate(ctx context.Context, uid, prompt string) (string, error)
}

// Router turns an outgoing submission into a persisted message. Text
// starting with the "/ai " prefix is redirected to the completion endpoint
// and the result is persisted under the synthetic bot identity instead of
// the sender.
type Router struct {
	store Store
	ai    Completer
}

func NewRouter(store Store, ai Completer) *Router {
	return &Router{store: store, ai: ai}
}

// Submit persists rawText (and optional imageURL) to projectID. Empty text
// with no image is a no-op and returns (nil, nil). Failures are terminal
// for the action; nothing is retried.
func (r *Router) Submit(ctx context.Context, sender UserRef, projectID, rawText, imageURL string) (*Message, error) {
	text := strings.TrimSpace(rawText)
	if text == "" && imageURL == "" {
		return nil, nil
	}
	if projectID == "" {
		return nil, ErrNoActiveProject
	}

	if strings.HasPrefix(text, aiCommandPrefix) {
		return r.submitAI(ctx, sender, projectID, strings.TrimPrefix(text, aiCommandPrefix))
	}

	sender.DisplayName = sender.DisplayNameOrDefault()
	msg, err := r.store.Insert(ctx, Message{
		ProjectID: projectID,
		Text:      text,
		ImageURL:  imageURL,
		User:      sender,
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

func (r *Router) submitAI(ctx context.Context, sender UserRef, projectID, prompt string) (*Message, error) {
	answer, err := r.ai.Generate(ctx, sender.UID, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai command: %w", err)
	}

	msg, err := r.store.Insert(ctx, Message{
		ProjectID: projectID,
		Text:      answer,
		User:      AIBot(),
	})
	if err != nil {
		return nil, fmt.Errorf("persist ai response: %w", err)
	}
	return &msg, nil
}
