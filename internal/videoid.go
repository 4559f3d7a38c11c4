package internal

import "regexp"

// Video ID extraction patterns, tried in order. Each captures the
// 11-character ID from one YouTube URL shape.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^\s&]*&)*v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID finds a YouTube video ID in free-form text. It tries
// the known URL shapes first (watch?v=, youtu.be/, embed/); if none
// match and the whole input is itself an 11-character ID, that is
// returned as-is. The second return value reports whether an ID was
// found.
func ExtractVideoID(text string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	if bareVideoID.MatchString(text) {
		return text, true
	}
	return "", false
}

// IsValidVideoID checks if a string looks like a YouTube video ID.
func IsValidVideoID(id string) bool {
	return bareVideoID.MatchString(id)
}
