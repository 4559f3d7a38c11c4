package internal

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "watch URL with extra params",
			input: "https://www.youtube.com/watch?list=PLx&v=dQw4w9WgXcQ&t=42s",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "short URL",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "short URL with timestamp",
			input: "https://youtu.be/dQw4w9WgXcQ?t=30",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "embed URL",
			input: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "bare ID",
			input: "dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "URL embedded in chat text",
			input: "check this out https://youtu.be/dQw4w9WgXcQ so good",
			want:  "dQw4w9WgXcQ",
			found: true,
		},
		{
			name:  "plain question",
			input: "what was the main point of the video?",
			found: false,
		},
		{
			name:  "ID too short",
			input: "dQw4w9WgXc",
			found: false,
		},
		{
			name:  "non-youtube URL",
			input: "https://vimeo.com/123456789",
			found: false,
		},
		{
			name:  "empty",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractVideoID(tt.input)
			if found != tt.found {
				t.Fatalf("ExtractVideoID(%q) found = %v, want %v", tt.input, found, tt.found)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidVideoID(t *testing.T) {
	if !IsValidVideoID("dQw4w9WgXcQ") {
		t.Error("expected dQw4w9WgXcQ to be valid")
	}
	if IsValidVideoID("too-short") {
		t.Error("expected too-short to be invalid")
	}
	if IsValidVideoID("dQw4w9WgXcQ extra") {
		t.Error("expected trailing text to be invalid")
	}
}
