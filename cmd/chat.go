package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tubechat/internal"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Discuss YouTube videos in the terminal",
	Long: `Start an interactive terminal session.

Paste a YouTube link to summarize it, then ask questions about the
video. Conversation history is persisted, so a later session picks up
where you left off.`,
	Example: `  # Start an interactive session
  tubechat chat

  # Prefer German transcripts and replies
  tubechat chat --language de`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyModelFlag(cmd); err != nil {
			return err
		}
		if err := internal.ValidateAPIRequirements(config); err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := internal.NewApp(ctx, config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		language, _ := cmd.Flags().GetString("language")
		if language == "" {
			language = config.DefaultLanguage
		}
		markdown := isatty.IsTerminal(os.Stdout.Fd())
		userID := int64(os.Getuid())

		fmt.Println("Send a YouTube link to summarize it, then ask away. Ctrl-D to quit.")

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "/quit" || text == "/exit" {
				return nil
			}

			msg := internal.InboundMessage{UserID: userID, Language: language, Text: text}
			out := &internal.TerminalReplier{Out: os.Stdout, Markdown: markdown}
			if err := app.Session().HandleMessage(ctx, msg, out); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	},
}

func init() {
	addPipelineFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}
