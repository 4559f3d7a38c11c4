package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned by the point lookups when no record exists
// for the given key.
var ErrNotFound = errors.New("not found")

// Store persists videos, transcripts, summaries, and the conversation
// log in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a store on the given database handle and runs
// migrations.
func NewStore(db *sql.DB, logger *slog.Logger) (*Store, error) {
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.logger.Debug("database ready")
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS video_metadata (
			video_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			channel_name TEXT NOT NULL DEFAULT '',
			duration INTEGER NOT NULL DEFAULT 0,
			published_at TEXT,
			view_count INTEGER NOT NULL DEFAULT 0,
			like_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			video_id TEXT NOT NULL,
			language TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(video_id, language)
		);

		CREATE TABLE IF NOT EXISTS video_summaries (
			video_id TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversation_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			video_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_video ON transcripts(video_id);
		CREATE INDEX IF NOT EXISTS idx_messages_user ON conversation_messages(user_id);
		CREATE INDEX IF NOT EXISTS idx_messages_user_video ON conversation_messages(user_id, video_id);
	`)
	return err
}

// SaveVideoMetadata upserts metadata for a video. A re-fetch overwrites
// the previous record (last write wins).
func (s *Store) SaveVideoMetadata(ctx context.Context, md *VideoMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO video_metadata
			(video_id, title, description, channel_name, duration, published_at, view_count, like_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			channel_name = excluded.channel_name,
			duration = excluded.duration,
			published_at = excluded.published_at,
			view_count = excluded.view_count,
			like_count = excluded.like_count`,
		md.VideoID, md.Title, md.Description, md.ChannelName, md.Duration,
		md.PublishedAt.UTC().Format(time.RFC3339Nano), md.ViewCount, md.LikeCount,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving video metadata: %w", err)
	}
	return nil
}

// SaveTranscript inserts a transcript unless one already exists for the
// (video, language) pair. The first write wins; later writes for the
// same pair are silently dropped.
func (s *Store) SaveTranscript(ctx context.Context, t *Transcript) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO transcripts (video_id, language, text, created_at)
		VALUES (?, ?, ?, ?)`,
		t.VideoID, t.Language, t.Text, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// SaveSummary upserts the summary for a video; regeneration overwrites.
func (s *Store) SaveSummary(ctx context.Context, summary *VideoSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO video_summaries (video_id, summary, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			summary = excluded.summary,
			created_at = excluded.created_at`,
		summary.VideoID, summary.Summary, summary.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// SaveMessage appends a message to the conversation log.
func (s *Store) SaveMessage(ctx context.Context, msg *ConversationMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (user_id, video_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.UserID, msg.VideoID, string(msg.Role), msg.Content,
		createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// GetVideoMetadata returns the metadata for a video, or ErrNotFound.
func (s *Store) GetVideoMetadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id, title, description, channel_name, duration, published_at, view_count, like_count
		FROM video_metadata WHERE video_id = ?`, videoID)

	var md VideoMetadata
	var publishedAt sql.NullString
	err := row.Scan(&md.VideoID, &md.Title, &md.Description, &md.ChannelName,
		&md.Duration, &publishedAt, &md.ViewCount, &md.LikeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading video metadata: %w", err)
	}
	if publishedAt.Valid {
		md.PublishedAt, _ = time.Parse(time.RFC3339Nano, publishedAt.String)
	}
	return &md, nil
}

// GetTranscript returns the transcript for a (video, language) pair, or
// ErrNotFound.
func (s *Store) GetTranscript(ctx context.Context, videoID, language string) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id, language, text FROM transcripts
		WHERE video_id = ? AND language = ?`, videoID, language)

	var t Transcript
	err := row.Scan(&t.VideoID, &t.Language, &t.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	return &t, nil
}

// GetTranscriptWithFallback returns the stored transcript in the first
// available language of the [user language, "en"] preference order, or
// ErrNotFound when neither exists.
func (s *Store) GetTranscriptWithFallback(ctx context.Context, videoID, language string) (*Transcript, error) {
	for _, lang := range TranscriptLanguages(language) {
		transcript, err := s.GetTranscript(ctx, videoID, lang)
		if err == nil {
			return transcript, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// GetSummary returns the stored summary for a video, or ErrNotFound.
func (s *Store) GetSummary(ctx context.Context, videoID string) (*VideoSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id, summary, created_at FROM video_summaries
		WHERE video_id = ?`, videoID)

	var summary VideoSummary
	var createdAt string
	err := row.Scan(&summary.VideoID, &summary.Summary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading summary: %w", err)
	}
	summary.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &summary, nil
}

// LastVideoForUser returns the video ID of the chronologically last
// saved message for a user, across all videos. The log is append-only,
// so the autoincrement id is the chronological order; the stored
// timestamp text is not safe to compare (RFC3339Nano trims trailing
// fraction zeros, breaking lexicographic order within a second).
func (s *Store) LastVideoForUser(ctx context.Context, userID int64) (string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id FROM conversation_messages
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT 1`, userID)

	var videoID string
	err := row.Scan(&videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading last video: %w", err)
	}
	return videoID, nil
}

// ConversationHistory returns up to limit most recent messages for the
// exact (user, video) pair, oldest first. Ordered by id for the same
// reason as LastVideoForUser.
func (s *Store) ConversationHistory(ctx context.Context, userID int64, videoID string, limit int) ([]ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, video_id, role, content, created_at FROM conversation_messages
		WHERE user_id = ? AND video_id = ?
		ORDER BY id DESC
		LIMIT ?`, userID, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading conversation history: %w", err)
	}
	defer rows.Close()

	var history []ConversationMessage
	for rows.Next() {
		var msg ConversationMessage
		var role, createdAt string
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.VideoID, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = Role(role)
		msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversation history: %w", err)
	}

	// The query walks newest-first to apply the cap; callers want
	// oldest-first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}
