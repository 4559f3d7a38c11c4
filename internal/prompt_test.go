package internal

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildSummaryPrompt(t *testing.T) {
	metadata := &VideoMetadata{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Test Video",
		ChannelName: "Test Channel",
		Duration:    212,
		ViewCount:   1000,
		LikeCount:   50,
	}
	transcript := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "hello world"}

	prompt, err := BuildSummaryPrompt(metadata, transcript, "en", 500)
	if err != nil {
		t.Fatalf("BuildSummaryPrompt() error: %v", err)
	}
	for _, want := range []string{"Test Video", "Test Channel", "3 minutes 32 seconds", "hello world", "500 words"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSummaryPromptTruncatesTranscript(t *testing.T) {
	metadata := &VideoMetadata{VideoID: "dQw4w9WgXcQ", Title: "Long"}
	transcript := &Transcript{
		VideoID: "dQw4w9WgXcQ",
		Text:    strings.Repeat("x", SummaryTranscriptLimit+5000),
	}

	prompt, err := BuildSummaryPrompt(metadata, transcript, "en", 500)
	if err != nil {
		t.Fatalf("BuildSummaryPrompt() error: %v", err)
	}
	if n := strings.Count(prompt, "x"); n != SummaryTranscriptLimit {
		t.Errorf("transcript occupies %d bytes in prompt, want %d", n, SummaryTranscriptLimit)
	}
}

func TestBuildChatSystemPromptLanguage(t *testing.T) {
	metadata := &VideoMetadata{VideoID: "dQw4w9WgXcQ", Title: "Test"}
	transcript := &Transcript{VideoID: "dQw4w9WgXcQ", Language: "ru", Text: "текст"}

	prompt, err := BuildChatSystemPrompt(metadata, transcript, "ru")
	if err != nil {
		t.Fatalf("BuildChatSystemPrompt() error: %v", err)
	}
	if !strings.Contains(prompt, "Отвечайте на русском языке") {
		t.Errorf("prompt missing Russian instruction:\n%s", prompt)
	}
	if !strings.Contains(prompt, "текст") {
		t.Errorf("prompt missing transcript text")
	}
}

func TestPackForFallbacks(t *testing.T) {
	tests := []struct {
		language string
		contains string
	}{
		{"en", "in English"},
		{"EN", "in English"},
		{"en-US", "in English"},
		{"ru", "на русском языке"},
		{"pt", "in English"}, // unsupported locale falls back
		{"", "in English"},
	}

	for _, tt := range tests {
		pack := packFor(tt.language)
		if !strings.Contains(pack.summaryInstruction, tt.contains) {
			t.Errorf("packFor(%q).summaryInstruction = %q, want it to contain %q",
				tt.language, pack.summaryInstruction, tt.contains)
		}
		if pack.summaryPoints == "" {
			t.Errorf("packFor(%q) has empty summary points", tt.language)
		}
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	// "é" is two bytes; a 3-byte limit would split the second rune.
	s := "aéé"
	got := truncate(s, 3)
	if !utf8.ValidString(got) {
		t.Errorf("truncate(%q, 3) = %q is not valid UTF-8", s, got)
	}
	if got != "aé" {
		t.Errorf("truncate(%q, 3) = %q, want %q", s, got, "aé")
	}

	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate below limit = %q, want unchanged", got)
	}
}
