package internal

import (
	"context"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// VideoMetadata contains YouTube video information.
type VideoMetadata struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ChannelName string    `json:"channel_name"`
	Duration    int       `json:"duration"` // seconds
	PublishedAt time.Time `json:"published_at"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
}

// Transcript is the full text of a video's captions in one language.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// VideoSummary is a generated summary of a video.
type VideoSummary struct {
	VideoID   string    `json:"video_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationMessage is one entry in the append-only conversation log.
type ConversationMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	VideoID   string    `json:"video_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// InboundMessage is a transport-agnostic incoming user message.
type InboundMessage struct {
	UserID   int64
	Language string // language hint from the transport, may be empty
	Text     string
}

// Replier delivers output back to the user. Reply sends a final answer.
// Status reports pipeline progress; transports that can edit a previous
// message (Telegram) update it in place, others print sequential lines
// or ignore the call entirely.
type Replier interface {
	Reply(ctx context.Context, text string) error
	Status(ctx context.Context, text string) error
}

// ReplyFunc adapts a plain function to the Replier interface, dropping
// status updates. Used by transports without progress support.
type ReplyFunc func(ctx context.Context, text string) error

func (f ReplyFunc) Reply(ctx context.Context, text string) error { return f(ctx, text) }

func (ReplyFunc) Status(context.Context, string) error { return nil }
