package internal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// TerminalReplier prints replies to a terminal. Status updates show as
// a spinner on stderr; the final reply is optionally rendered as
// markdown when stdout is a terminal.
type TerminalReplier struct {
	Out      io.Writer
	Markdown bool
	spinner  *progressbar.ProgressBar
}

func (r *TerminalReplier) Status(_ context.Context, text string) error {
	if r.spinner == nil {
		r.spinner = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(text),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	} else {
		r.spinner.Describe(text)
	}
	_ = r.spinner.Add(1)
	return nil
}

func (r *TerminalReplier) Reply(_ context.Context, text string) error {
	if r.spinner != nil {
		_ = r.spinner.Finish()
		r.spinner = nil
	}

	if r.Markdown {
		rendered, err := RenderMarkdown(text)
		if err == nil {
			_, err = fmt.Fprintln(r.Out, rendered)
			return err
		}
		// Fall back to plain text if rendering fails.
	}
	_, err := fmt.Fprintln(r.Out, text)
	return err
}
