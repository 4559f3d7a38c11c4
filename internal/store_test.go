package internal

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewStore(db, logger)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return s
}

func TestVideoMetadataLastWriteWins(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &VideoMetadata{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Original Title",
		ChannelName: "Channel A",
		Duration:    212,
		ViewCount:   100,
	}
	if err := s.SaveVideoMetadata(ctx, first); err != nil {
		t.Fatalf("SaveVideoMetadata() error: %v", err)
	}

	second := &VideoMetadata{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Updated Title",
		ChannelName: "Channel A",
		Duration:    212,
		ViewCount:   250,
	}
	if err := s.SaveVideoMetadata(ctx, second); err != nil {
		t.Fatalf("SaveVideoMetadata() second write error: %v", err)
	}

	got, err := s.GetVideoMetadata(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetVideoMetadata() error: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Updated Title")
	}
	if got.ViewCount != 250 {
		t.Errorf("ViewCount = %d, want 250", got.ViewCount)
	}
}

func TestVideoMetadataNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetVideoMetadata(context.Background(), "missing00000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVideoMetadata() error = %v, want ErrNotFound", err)
	}
}

func TestTranscriptFirstWriteWins(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "original text"}
	if err := s.SaveTranscript(ctx, first); err != nil {
		t.Fatalf("SaveTranscript() error: %v", err)
	}

	second := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "replacement text"}
	if err := s.SaveTranscript(ctx, second); err != nil {
		t.Fatalf("SaveTranscript() second write error: %v", err)
	}

	got, err := s.GetTranscript(ctx, "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("GetTranscript() error: %v", err)
	}
	if got.Text != "original text" {
		t.Errorf("Text = %q, want the first write to win", got.Text)
	}
}

func TestTranscriptLanguagesIndependent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	en := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "english"}
	ru := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "ru", Text: "russian"}
	if err := s.SaveTranscript(ctx, en); err != nil {
		t.Fatalf("SaveTranscript(en) error: %v", err)
	}
	if err := s.SaveTranscript(ctx, ru); err != nil {
		t.Fatalf("SaveTranscript(ru) error: %v", err)
	}

	got, err := s.GetTranscript(ctx, "dQw4w9WgXcQ", "ru")
	if err != nil {
		t.Fatalf("GetTranscript(ru) error: %v", err)
	}
	if got.Text != "russian" {
		t.Errorf("Text = %q, want %q", got.Text, "russian")
	}

	if _, err := s.GetTranscript(ctx, "dQw4w9WgXcQ", "de"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTranscript(de) error = %v, want ErrNotFound", err)
	}
}

func TestGetTranscriptWithFallback(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	en := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "english"}
	if err := s.SaveTranscript(ctx, en); err != nil {
		t.Fatalf("SaveTranscript() error: %v", err)
	}

	// Only English is stored; a Russian request falls back to it.
	got, err := s.GetTranscriptWithFallback(ctx, "dQw4w9WgXcQ", "ru")
	if err != nil {
		t.Fatalf("GetTranscriptWithFallback(ru) error: %v", err)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want %q", got.Language, "en")
	}

	ru := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "ru", Text: "russian"}
	if err := s.SaveTranscript(ctx, ru); err != nil {
		t.Fatalf("SaveTranscript() error: %v", err)
	}

	// Once the preferred language exists it wins over the fallback.
	got, err = s.GetTranscriptWithFallback(ctx, "dQw4w9WgXcQ", "ru")
	if err != nil {
		t.Fatalf("GetTranscriptWithFallback(ru) error: %v", err)
	}
	if got.Language != "ru" {
		t.Errorf("Language = %q, want %q", got.Language, "ru")
	}

	if _, err := s.GetTranscriptWithFallback(ctx, "missingVid0", "ru"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTranscriptWithFallback(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSummaryOverwrite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &VideoSummary{VideoID: "dQw4w9WgXcQ", Summary: "first summary", CreatedAt: time.Now()}
	if err := s.SaveSummary(ctx, first); err != nil {
		t.Fatalf("SaveSummary() error: %v", err)
	}

	second := &VideoSummary{VideoID: "dQw4w9WgXcQ", Summary: "regenerated summary", CreatedAt: time.Now()}
	if err := s.SaveSummary(ctx, second); err != nil {
		t.Fatalf("SaveSummary() second write error: %v", err)
	}

	got, err := s.GetSummary(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetSummary() error: %v", err)
	}
	if got.Summary != "regenerated summary" {
		t.Errorf("Summary = %q, want the second write to win", got.Summary)
	}
}

func TestLastVideoForUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	messages := []*ConversationMessage{
		{UserID: 1, VideoID: "videoAAAAAA", Role: RoleUser, Content: "first", CreatedAt: base},
		{UserID: 1, VideoID: "videoBBBBBB", Role: RoleUser, Content: "second", CreatedAt: base.Add(time.Minute)},
		{UserID: 2, VideoID: "videoCCCCCC", Role: RoleUser, Content: "other user", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, msg := range messages {
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage() error: %v", err)
		}
	}

	got, err := s.LastVideoForUser(ctx, 1)
	if err != nil {
		t.Fatalf("LastVideoForUser() error: %v", err)
	}
	if got != "videoBBBBBB" {
		t.Errorf("LastVideoForUser() = %q, want %q", got, "videoBBBBBB")
	}

	if _, err := s.LastVideoForUser(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("LastVideoForUser(99) error = %v, want ErrNotFound", err)
	}
}

func TestLastVideoTiesBreakByInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	at := time.Now()
	if err := s.SaveMessage(ctx, &ConversationMessage{UserID: 1, VideoID: "videoAAAAAA", Role: RoleUser, Content: "a", CreatedAt: at}); err != nil {
		t.Fatalf("SaveMessage() error: %v", err)
	}
	if err := s.SaveMessage(ctx, &ConversationMessage{UserID: 1, VideoID: "videoBBBBBB", Role: RoleUser, Content: "b", CreatedAt: at}); err != nil {
		t.Fatalf("SaveMessage() error: %v", err)
	}

	got, err := s.LastVideoForUser(ctx, 1)
	if err != nil {
		t.Fatalf("LastVideoForUser() error: %v", err)
	}
	if got != "videoBBBBBB" {
		t.Errorf("LastVideoForUser() = %q, want the later insert", got)
	}
}

func TestLastVideoSameSecondTimestamps(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Within one second, .100s serializes as ".1" and .150s as ".15";
	// compared as text the earlier timestamp sorts after the later one.
	// The cursor must follow save order regardless.
	second := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	earlier := second.Add(100 * time.Millisecond)
	later := second.Add(150 * time.Millisecond)

	if err := s.SaveMessage(ctx, &ConversationMessage{UserID: 1, VideoID: "videoAAAAAA", Role: RoleUser, Content: "old", CreatedAt: earlier}); err != nil {
		t.Fatalf("SaveMessage() error: %v", err)
	}
	if err := s.SaveMessage(ctx, &ConversationMessage{UserID: 1, VideoID: "videoBBBBBB", Role: RoleUser, Content: "new", CreatedAt: later}); err != nil {
		t.Fatalf("SaveMessage() error: %v", err)
	}

	got, err := s.LastVideoForUser(ctx, 1)
	if err != nil {
		t.Fatalf("LastVideoForUser() error: %v", err)
	}
	if got != "videoBBBBBB" {
		t.Errorf("LastVideoForUser() = %q, want %q", got, "videoBBBBBB")
	}
}

func TestConversationHistorySameSecondOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	second := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	contents := []string{"first", "second", "third"}
	fractions := []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 200 * time.Millisecond}
	for i, content := range contents {
		msg := &ConversationMessage{
			UserID:    1,
			VideoID:   "dQw4w9WgXcQ",
			Role:      RoleUser,
			Content:   content,
			CreatedAt: second.Add(fractions[i]),
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage() error: %v", err)
		}
	}

	history, err := s.ConversationHistory(ctx, 1, "dQw4w9WgXcQ", 10)
	if err != nil {
		t.Fatalf("ConversationHistory() error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i, content := range contents {
		if history[i].Content != content {
			t.Errorf("history[%d].Content = %q, want %q", i, history[i].Content, content)
		}
	}
}

func TestConversationHistoryOrderAndLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msg := &ConversationMessage{
			UserID:    1,
			VideoID:   "dQw4w9WgXcQ",
			Role:      role,
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage() error: %v", err)
		}
	}

	history, err := s.ConversationHistory(ctx, 1, "dQw4w9WgXcQ", 10)
	if err != nil {
		t.Fatalf("ConversationHistory() error: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("len(history) = %d, want 10", len(history))
	}
	// The cap keeps the most recent messages, returned oldest first.
	if history[0].Content != "f" {
		t.Errorf("history[0].Content = %q, want %q", history[0].Content, "f")
	}
	if history[9].Content != "o" {
		t.Errorf("history[9].Content = %q, want %q", history[9].Content, "o")
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Errorf("history not in ascending order at index %d", i)
		}
	}
}

func TestConversationHistoryFiltersByUserAndVideo(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	messages := []*ConversationMessage{
		{UserID: 1, VideoID: "videoAAAAAA", Role: RoleUser, Content: "mine", CreatedAt: base},
		{UserID: 1, VideoID: "videoBBBBBB", Role: RoleUser, Content: "other video", CreatedAt: base.Add(time.Second)},
		{UserID: 2, VideoID: "videoAAAAAA", Role: RoleUser, Content: "other user", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, msg := range messages {
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage() error: %v", err)
		}
	}

	history, err := s.ConversationHistory(ctx, 1, "videoAAAAAA", 10)
	if err != nil {
		t.Fatalf("ConversationHistory() error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if history[0].Content != "mine" {
		t.Errorf("history[0].Content = %q, want %q", history[0].Content, "mine")
	}
}

func TestConversationHistoryEmpty(t *testing.T) {
	s := setupTestStore(t)

	history, err := s.ConversationHistory(context.Background(), 1, "dQw4w9WgXcQ", 10)
	if err != nil {
		t.Fatalf("ConversationHistory() error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}
