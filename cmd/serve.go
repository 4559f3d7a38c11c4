package cmd

import (
	"github.com/spf13/cobra"

	"tubechat/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the long-polling Telegram bot.

Users send YouTube links to get summaries and then ask follow-up
questions about the video. Progress is reported by editing the status
message in place. Requires telegram_bot_token, youtube_api_key, and
openai_api_key to be configured.`,
	Example: `  # Run the bot with credentials from config.toml or the environment
  tubechat serve

  # Use a specific OpenAI model
  tubechat serve --model gpt-4o`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyModelFlag(cmd); err != nil {
			return err
		}
		if err := internal.ValidateBotRequirements(config); err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := internal.NewApp(ctx, config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		bot, err := internal.NewTelegramBot(config.TelegramBotToken, app.Session(), config.DefaultLanguage, logger)
		if err != nil {
			return err
		}
		return bot.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringP("model", "m", "", "OpenAI model to use")
	rootCmd.AddCommand(serveCmd)
}
