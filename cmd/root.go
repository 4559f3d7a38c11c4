package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tubechat/internal"
)

var (
	config *internal.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tubechat [YouTube URL or ID]",
	Short: "Conversational YouTube video summarizer",
	Long: `TubeChat summarizes YouTube videos using AI and answers follow-up
questions grounded in the video's transcript.

Send it a YouTube link and it fetches the metadata and captions,
generates a summary, and stores everything. Later questions are
answered with the transcript and your conversation history as context.

It runs as a Telegram bot (serve), an interactive terminal session
(chat), an MCP server (mcp), or a one-shot summarizer.`,
	Example: `  # Summarize a YouTube video (default behavior)
  tubechat "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubechat tAP1eZYEuKA

  # Run the Telegram bot
  tubechat serve

  # Chat about videos in the terminal
  tubechat chat

  # Use a specific OpenAI model
  tubechat "https://youtu.be/tAP1eZYEuKA" --model gpt-4o`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runSummarize(cmd, args[0])
	},
}

// runSummarize handles the one-shot pipeline shared by the root and
// summarize commands.
func runSummarize(cmd *cobra.Command, arg string) error {
	if err := applyModelFlag(cmd); err != nil {
		return err
	}
	if err := internal.ValidateAPIRequirements(config); err != nil {
		return err
	}

	if _, ok := internal.ExtractVideoID(arg); !ok {
		return fmt.Errorf("%q doesn't look like a YouTube URL or video ID", arg)
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

	msg := internal.InboundMessage{
		UserID:   int64(os.Getuid()),
		Language: language,
		Text:     arg,
	}
	out := &internal.TerminalReplier{
		Out:      os.Stdout,
		Markdown: isatty.IsTerminal(os.Stdout.Fd()),
	}
	return app.Session().HandleMessage(ctx, msg, out)
}

// applyModelFlag overrides the configured model when --model was given.
func applyModelFlag(cmd *cobra.Command) error {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		return nil
	}
	if err := internal.ValidateModel(model); err != nil {
		return err
	}
	config.ChatModel = model
	return nil
}

// addPipelineFlags adds the flags shared by commands that run the
// summarize/chat pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model to use")
	cmd.Flags().StringP("language", "l", "", "Preferred transcript and reply language")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config = internal.InitConfig()
	logger = internal.NewLogger(os.Stderr, config.LogLevel)

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func init() {
	addPipelineFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
