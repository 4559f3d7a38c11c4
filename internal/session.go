package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Fetcher retrieves video metadata and transcripts from YouTube.
type Fetcher interface {
	Metadata(ctx context.Context, videoID string) (*VideoMetadata, error)
	Transcript(ctx context.Context, videoID string, languages []string) (*Transcript, error)
}

// Summarizer generates summaries and grounded chat replies.
type Summarizer interface {
	Summarize(ctx context.Context, metadata *VideoMetadata, transcript *Transcript, language string) (string, error)
	Chat(ctx context.Context, question string, metadata *VideoMetadata, transcript *Transcript, history []ConversationMessage, language string) (string, error)
}

// User-facing prompts for the conversation path.
const (
	msgSendLinkFirst = "👋 Please send me a YouTube link first, then we can discuss the video!\n\nUse /help for more information."
	msgDataMissing   = "❌ Sorry, I couldn't find the video data. Please send the video link again."
)

// Session routes incoming messages: a message containing a video link
// runs the fetch/summarize pipeline, anything else continues the
// conversation about the user's last video. All per-message failures
// are converted to a reply; the session keeps serving.
type Session struct {
	store        *Store
	fetcher      Fetcher
	ai           Summarizer
	historyLimit int
	logger       *slog.Logger
}

// NewSession creates a session orchestrator.
func NewSession(store *Store, fetcher Fetcher, ai Summarizer, historyLimit int, logger *slog.Logger) *Session {
	return &Session{
		store:        store,
		fetcher:      fetcher,
		ai:           ai,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// HandleMessage processes one inbound message to completion and sends
// the outcome through the replier. The returned error reflects only
// transport-level reply failures; pipeline failures become user-facing
// messages.
func (s *Session) HandleMessage(ctx context.Context, msg InboundMessage, out Replier) error {
	logger := s.logger.With("request_id", uuid.NewString(), "user_id", msg.UserID)

	if videoID, ok := ExtractVideoID(msg.Text); ok {
		return s.ProcessVideo(ctx, msg.UserID, videoID, msg.Language, out, logger)
	}
	return s.Converse(ctx, msg.UserID, msg.Text, msg.Language, out, logger)
}

// ProcessVideo runs the video pipeline: serve the cached summary when
// one exists, otherwise fetch metadata and transcript, generate and
// persist a summary, and reply with it.
func (s *Session) ProcessVideo(ctx context.Context, userID int64, videoID, language string, out Replier, logger *slog.Logger) error {
	logger = logger.With("video_id", videoID)

	existing, err := s.store.GetSummary(ctx, videoID)
	if err == nil {
		// Record the context switch so follow-up questions route to
		// this video, then serve the stored summary without touching
		// any collaborator.
		viewing := &ConversationMessage{
			UserID:  userID,
			VideoID: videoID,
			Role:    RoleUser,
			Content: fmt.Sprintf("[Viewing video: %s]", videoID),
		}
		if err := s.store.SaveMessage(ctx, viewing); err != nil {
			logger.Error("saving viewing marker", "error", err)
		}
		logger.Info("served cached summary")
		return out.Reply(ctx, fmt.Sprintf("✅ I already have this video!\n\n%s", existing.Summary))
	}
	if !errors.Is(err, ErrNotFound) {
		logger.Error("looking up summary", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}

	if err := out.Status(ctx, "📥 Fetching video metadata..."); err != nil {
		logger.Warn("sending status", "error", err)
	}
	metadata, err := s.fetcher.Metadata(ctx, videoID)
	if err != nil {
		logger.Error("fetching metadata", "phase", "metadata", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}
	if err := s.store.SaveVideoMetadata(ctx, metadata); err != nil {
		logger.Error("persisting metadata", "phase", "metadata", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}

	if err := out.Status(ctx, "📝 Fetching video transcript..."); err != nil {
		logger.Warn("sending status", "error", err)
	}
	transcript, err := s.fetcher.Transcript(ctx, videoID, TranscriptLanguages(language))
	if err != nil {
		logger.Error("fetching transcript", "phase", "transcript", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}
	if err := s.store.SaveTranscript(ctx, transcript); err != nil {
		logger.Error("persisting transcript", "phase", "transcript", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}

	if err := out.Status(ctx, "🤖 Generating summary with AI..."); err != nil {
		logger.Warn("sending status", "error", err)
	}
	summaryText, err := s.ai.Summarize(ctx, metadata, transcript, language)
	if err != nil {
		logger.Error("generating summary", "phase", "summary", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}
	summary := &VideoSummary{VideoID: videoID, Summary: summaryText, CreatedAt: time.Now()}
	if err := s.store.SaveSummary(ctx, summary); err != nil {
		logger.Error("persisting summary", "phase", "summary", "error", err)
		return out.Reply(ctx, formatVideoError(err))
	}

	processed := &ConversationMessage{
		UserID:  userID,
		VideoID: videoID,
		Role:    RoleUser,
		Content: fmt.Sprintf("[Processed new video: %s]", videoID),
	}
	if err := s.store.SaveMessage(ctx, processed); err != nil {
		logger.Error("saving processed marker", "error", err)
	}

	logger.Info("processed video", "title", metadata.Title)
	return out.Reply(ctx, fmt.Sprintf(
		"✅ Video processed successfully!\n\n📺 %s\n👤 %s\n\n📄 Summary:\n%s\n\n💬 Ask me anything about this video!",
		metadata.Title, metadata.ChannelName, summaryText))
}

// Converse answers a follow-up question about the user's last video.
func (s *Session) Converse(ctx context.Context, userID int64, text, language string, out Replier, logger *slog.Logger) error {
	videoID, err := s.store.LastVideoForUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return out.Reply(ctx, msgSendLinkFirst)
	}
	if err != nil {
		logger.Error("looking up last video", "error", err)
		return out.Reply(ctx, msgDataMissing)
	}
	logger = logger.With("video_id", videoID)

	metadata, err := s.store.GetVideoMetadata(ctx, videoID)
	if err != nil {
		logger.Warn("metadata missing for last video", "error", err)
		return out.Reply(ctx, msgDataMissing)
	}

	transcript, err := s.store.GetTranscriptWithFallback(ctx, videoID, language)
	if err != nil {
		logger.Warn("transcript missing for last video", "error", err)
		return out.Reply(ctx, msgDataMissing)
	}

	history, err := s.store.ConversationHistory(ctx, userID, videoID, s.historyLimit)
	if err != nil {
		logger.Error("loading history", "error", err)
		return out.Reply(ctx, msgDataMissing)
	}

	// The user message is persisted before the backend call so the
	// last-video cursor and history reflect it even if the call fails.
	userMsg := &ConversationMessage{UserID: userID, VideoID: videoID, Role: RoleUser, Content: text}
	if err := s.store.SaveMessage(ctx, userMsg); err != nil {
		logger.Error("saving user message", "error", err)
		return out.Reply(ctx, msgDataMissing)
	}

	if err := out.Status(ctx, "💭 Thinking..."); err != nil {
		logger.Warn("sending status", "error", err)
	}
	reply, err := s.ai.Chat(ctx, text, metadata, transcript, history, language)
	if err != nil {
		logger.Error("generating chat reply", "error", err)
		return out.Reply(ctx, fmt.Sprintf("❌ Sorry, I encountered an error: %v", err))
	}

	assistantMsg := &ConversationMessage{UserID: userID, VideoID: videoID, Role: RoleAssistant, Content: reply}
	if err := s.store.SaveMessage(ctx, assistantMsg); err != nil {
		logger.Error("saving assistant message", "error", err)
	}

	return out.Reply(ctx, reply)
}

// TranscriptLanguages returns the transcript preference order for a
// user language hint: [user language, "en"], collapsing to one attempt
// when the user's language already is English.
func TranscriptLanguages(language string) []string {
	if language == "" || language == "en" {
		return []string{"en"}
	}
	return []string{language, "en"}
}

// formatVideoError converts pipeline failures into a user-facing reply.
func formatVideoError(err error) string {
	var reason string
	switch {
	case errors.Is(err, ErrVideoNotFound):
		reason = "the video was not found"
	case errors.Is(err, ErrVideoUnavailable):
		reason = "the video is unavailable"
	case errors.Is(err, ErrTranscriptsDisabled):
		reason = "transcripts are disabled for this video"
	case errors.Is(err, ErrNoTranscript):
		reason = "no transcript is available in your language or English"
	default:
		reason = err.Error()
	}
	return fmt.Sprintf("❌ Error processing video: %s\n\nPlease check the URL and try again.", reason)
}
