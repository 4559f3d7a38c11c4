package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"tubechat/internal"
)

// cpCmd copies a stored summary or transcript to the system clipboard.
var cpCmd = &cobra.Command{
	Use:   "cp [URL or ID]",
	Short: "Copy a stored summary or transcript to the clipboard",
	Example: `  # Copy the stored summary of a video
  tubechat cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubechat cp tAP1eZYEuKA

  # Copy the stored transcript instead
  tubechat cp tAP1eZYEuKA --transcript --language en`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, ok := internal.ExtractVideoID(args[0])
		if !ok {
			return fmt.Errorf("%q doesn't look like a YouTube URL or video ID", args[0])
		}

		ctx := cmd.Context()
		app, err := internal.NewApp(ctx, config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		wantTranscript, _ := cmd.Flags().GetBool("transcript")
		var text, what string
		if wantTranscript {
			language, _ := cmd.Flags().GetString("language")
			if language == "" {
				language = config.DefaultLanguage
			}
			// Same preference order the chat path uses, so a transcript
			// stored under the English fallback is still found.
			transcript, err := app.Store().GetTranscriptWithFallback(ctx, videoID, language)
			if err != nil {
				return fmt.Errorf("no stored transcript for %s in %q or English (summarize the video first)", videoID, language)
			}
			text, what = transcript.Text, "Transcript"
		} else {
			summary, err := app.Store().GetSummary(ctx, videoID)
			if err != nil {
				return fmt.Errorf("no stored summary for %s (summarize the video first)", videoID)
			}
			text, what = summary.Summary, "Summary"
		}

		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Printf("%s copied to clipboard\n", what)
		return nil
	},
}

func init() {
	cpCmd.Flags().Bool("transcript", false, "Copy the transcript instead of the summary")
	cpCmd.Flags().StringP("language", "l", "", "Transcript language (with --transcript)")
	rootCmd.AddCommand(cpCmd)
}
