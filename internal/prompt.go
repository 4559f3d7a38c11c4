package internal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// Transcript text is truncated before inclusion in prompts to respect
// backend input limits.
const (
	SummaryTranscriptLimit = 15000
	ChatTranscriptLimit    = 20000
)

// languagePack holds the localized natural-language scaffolding for one
// supported locale. Keeping these in a table rather than branching
// logic keeps the backend substitutable in tests.
type languagePack struct {
	// summaryInstruction is a fmt string taking the word cap.
	summaryInstruction string
	summaryPoints      string
	chatSystem         string
}

var languagePacks = map[string]languagePack{
	"en": {
		summaryInstruction: "Please provide a comprehensive summary in English (no more than %d words) that covers:",
		summaryPoints: `1. The main topic and purpose of the video
2. Key points and important information discussed
3. Main conclusions or takeaways

Write in a clear, informative style.`,
		chatSystem: "You are a helpful assistant discussing a YouTube video with a user. Respond in English.",
	},
	"ru": {
		summaryInstruction: "Пожалуйста, предоставьте подробное резюме на русском языке (не более %d слов), которое включает:",
		summaryPoints: `1. Основная тема и цель видео
2. Ключевые моменты и важная обсуждаемая информация
3. Основные выводы или главные идеи

Пишите в ясном, информативном стиле.`,
		chatSystem: "Вы полезный помощник, обсуждающий видео YouTube с пользователем. Отвечайте на русском языке.",
	},
	"es": {
		summaryInstruction: "Por favor, proporcione un resumen completo en español (no más de %d palabras) que cubra:",
		chatSystem:         "Eres un asistente útil que discute un video de YouTube con un usuario. Responde en español.",
	},
	"de": {
		summaryInstruction: "Bitte geben Sie eine umfassende Zusammenfassung auf Deutsch (nicht mehr als %d Wörter) an, die Folgendes abdeckt:",
		chatSystem:         "Sie sind ein hilfreicher Assistent, der ein YouTube-Video mit einem Benutzer bespricht. Antworten Sie auf Deutsch.",
	},
	"fr": {
		summaryInstruction: "Veuillez fournir un résumé complet en français (pas plus de %d mots) qui couvre:",
		chatSystem:         "Vous êtes un assistant utile qui discute d'une vidéo YouTube avec un utilisateur. Répondez en français.",
	},
}

// packFor resolves a language hint to a pack, defaulting to English.
// Region variants ("pt-BR") match on the base language.
func packFor(language string) languagePack {
	lang := strings.ToLower(language)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	pack, ok := languagePacks[lang]
	if !ok {
		return languagePacks["en"]
	}
	// Locales without localized summary points fall back to the English ones.
	if pack.summaryPoints == "" {
		pack.summaryPoints = languagePacks["en"].summaryPoints
	}
	return pack
}

var summaryPromptTemplate = template.Must(template.New("summary").Parse(
	`Analyze this YouTube video and create a concise summary.

Video Details:
- Title: {{.Title}}
- Channel: {{.Channel}}
- Duration: {{.Minutes}} minutes {{.Seconds}} seconds
- Views: {{.Views}}
- Likes: {{.Likes}}

Transcript:
{{.Transcript}}

{{.Instruction}}
{{.Points}}`))

// summaryPromptData for template injection.
type summaryPromptData struct {
	Title       string
	Channel     string
	Minutes     int
	Seconds     int
	Views       int64
	Likes       int64
	Transcript  string
	Instruction string
	Points      string
}

// BuildSummaryPrompt assembles the summarization prompt for one video,
// truncating the transcript to the summary window.
func BuildSummaryPrompt(metadata *VideoMetadata, transcript *Transcript, language string, maxWords int) (string, error) {
	pack := packFor(language)

	data := summaryPromptData{
		Title:       metadata.Title,
		Channel:     metadata.ChannelName,
		Minutes:     metadata.Duration / 60,
		Seconds:     metadata.Duration % 60,
		Views:       metadata.ViewCount,
		Likes:       metadata.LikeCount,
		Transcript:  truncate(transcript.Text, SummaryTranscriptLimit),
		Instruction: fmt.Sprintf(pack.summaryInstruction, maxWords),
		Points:      pack.summaryPoints,
	}

	var buf bytes.Buffer
	if err := summaryPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing summary prompt template: %w", err)
	}
	return buf.String(), nil
}

var chatSystemTemplate = template.Must(template.New("chat").Parse(
	`{{.Instruction}}

Video Information:
- Title: {{.Title}}
- Channel: {{.Channel}}
- Description: {{.Description}}

Full Transcript:
{{.Transcript}}

Use the transcript to answer questions accurately. Be conversational and helpful.
Refer to specific parts of the video when relevant.`))

type chatSystemData struct {
	Instruction string
	Title       string
	Channel     string
	Description string
	Transcript  string
}

// BuildChatSystemPrompt assembles the system message grounding a
// conversation in one video's transcript.
func BuildChatSystemPrompt(metadata *VideoMetadata, transcript *Transcript, language string) (string, error) {
	pack := packFor(language)

	data := chatSystemData{
		Instruction: pack.chatSystem,
		Title:       metadata.Title,
		Channel:     metadata.ChannelName,
		Description: truncate(metadata.Description, 500),
		Transcript:  truncate(transcript.Text, ChatTranscriptLimit),
	}

	var buf bytes.Buffer
	if err := chatSystemTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing chat system template: %w", err)
	}
	return buf.String(), nil
}

// truncate cuts s to at most limit bytes without splitting a UTF-8
// sequence mid-rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
