package internal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Fetcher errors surfaced to the orchestrator. The session layer maps
// these to user-facing messages.
var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrVideoUnavailable    = errors.New("video is unavailable")
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscript        = errors.New("no transcript found in requested languages")
)

// YouTube fetches video metadata through the YouTube Data API and
// caption tracks from the public watch page.
type YouTube struct {
	service *youtube.Service
	http    *http.Client
}

// NewYouTube creates a YouTube fetcher using the given Data API key.
func NewYouTube(ctx context.Context, apiKey string) (*YouTube, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return &YouTube{
		service: service,
		http:    &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Metadata fetches video details for the given video ID.
func (yt *YouTube) Metadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	resp, err := yt.service.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("fetching video metadata: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := resp.Items[0]
	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		publishedAt = time.Time{}
	}

	md := &VideoMetadata{
		VideoID:     videoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		ChannelName: item.Snippet.ChannelTitle,
		PublishedAt: publishedAt,
	}
	if item.ContentDetails != nil {
		md.Duration = ParseISODuration(item.ContentDetails.Duration)
	}
	if item.Statistics != nil {
		md.ViewCount = int64(item.Statistics.ViewCount)
		md.LikeCount = int64(item.Statistics.LikeCount)
	}
	return md, nil
}

var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts an ISO-8601 duration like "PT1H30M45S" to
// total seconds. Malformed input yields 0 rather than an error; a video
// with an unparseable duration is still worth summarizing.
func ParseISODuration(iso string) int {
	m := isoDurationRegex.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + s
}

// captionTrack mirrors the relevant fields of the player response's
// captionTracks entries embedded in the watch page.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// extractCaptionTracksJSON returns the captionTracks array embedded in
// the watch page. It scans to the matching close bracket instead of the
// first one: track names can carry nested arrays ({"runs":[...]}), so a
// non-greedy match would cut the JSON short.
func extractCaptionTracksJSON(page string) (string, bool) {
	const key = `"captionTracks":`
	i := strings.Index(page, key)
	if i < 0 {
		return "", false
	}
	rest := page[i+len(key):]
	if len(rest) == 0 || rest[0] != '[' {
		return "", false
	}

	depth := 0
	inString := false
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if inString {
			switch c {
			case '\\':
				j++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[:j+1], true
			}
		}
	}
	return "", false
}

// Transcript fetches the caption text for a video, preferring languages
// in the given order. Languages match on exact code first, then on
// region variants ("en" matches "en-US").
func (yt *YouTube) Transcript(ctx context.Context, videoID string, languages []string) (*Transcript, error) {
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	tracks, err := yt.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, language, ok := pickCaptionTrack(tracks, languages)
	if !ok {
		return nil, ErrNoTranscript
	}

	text, err := yt.downloadCaptions(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("downloading captions: %w", err)
	}

	return &Transcript{VideoID: videoID, Language: language, Text: text}, nil
}

// captionTracks scrapes the list of available caption tracks from the
// watch page. YouTube exposes no official captions endpoint for third
// parties, so this reads the player response the page embeds.
func (yt *YouTube) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.youtube.com/watch?v="+videoID, nil)
	if err != nil {
		return nil, fmt.Errorf("building watch page request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := yt.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading watch page: %w", err)
	}
	page := string(body)

	if strings.Contains(page, `"status":"ERROR"`) || strings.Contains(page, "Video unavailable") {
		return nil, ErrVideoUnavailable
	}

	raw, ok := extractCaptionTracksJSON(page)
	if !ok {
		return nil, ErrTranscriptsDisabled
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, fmt.Errorf("parsing caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return tracks, nil
}

// pickCaptionTrack selects the first track matching the language
// preference order. Returns the normalized language code that matched.
func pickCaptionTrack(tracks []captionTrack, languages []string) (captionTrack, string, bool) {
	for _, lang := range languages {
		for _, track := range tracks {
			if track.LanguageCode == lang {
				return track, lang, true
			}
		}
		for _, track := range tracks {
			if strings.HasPrefix(track.LanguageCode, lang+"-") {
				return track, lang, true
			}
		}
	}
	return captionTrack{}, "", false
}

// timedText is the XML document served by the caption endpoint.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (yt *YouTube) downloadCaptions(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := yt.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("parsing caption XML: %w", err)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}
