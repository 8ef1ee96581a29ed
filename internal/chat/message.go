package chat

import (
	"strings"
	"time"
)

// Synthetic identity that authors AI completions. AI responses are never
// attributed to the human who typed the command.
const (
	AIBotUID         = "AI_BOT"
	AIBotEmail       = "ai@k1w1proplus.com"
	AIBotDisplayName = "k1w1 AI"
)

// UserRef is the author snapshot embedded in every message. Messages
// reference users, they never own them.
type UserRef struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// AIBot returns the synthetic author used for AI completions.
func AIBot() UserRef {
	return UserRef{UID: AIBotUID, Email: AIBotEmail, DisplayName: AIBotDisplayName}
}

// DisplayNameOrDefault falls back to the local part of the email when no
// display name has been set.
func (u UserRef) DisplayNameOrDefault() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Message is a persisted chat message scoped to one project. Messages are
// immutable once created; CreatedAt is assigned by the store at write time,
// never by the client clock.
type Message struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"image_url,omitempty"`
	User      UserRef   `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageView is the presentation shape of a message. Timestamp formatting
// happens here, at read time, because the stored value is a server-assigned
// instant.
type MessageView struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	CreatedAt string  `json:"createdAt"`
	User      UserRef `json:"user"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// ViewOf shapes a stored message for presentation.
func ViewOf(m Message) MessageView {
	u := m.User
	u.DisplayName = u.DisplayNameOrDefault()
	return MessageView{
		ID:        m.ID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.Local().Format("02.01.2006, 15:04:05"),
		User:      u,
		ImageURL:  m.ImageURL,
	}
}

// ViewsOf shapes a snapshot preserving its order.
func ViewsOf(ms []Message) []MessageView {
	out := make([]MessageView, 0, len(ms))
	for _, m := range ms {
		out = append(out, ViewOf(m))
	}
	return out
}
