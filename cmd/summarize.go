package cmd

import (
	"github.com/spf13/cobra"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL or ID]",
	Short: "Generate summary from YouTube video",
	Long: `Fetch a video's metadata and transcript, generate a summary, and
store everything for later discussion. If the video was already
processed, the stored summary is shown without any API calls.`,
	Example: `  # Generate summary from YouTube video
  tubechat summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubechat summarize tAP1eZYEuKA

  # Use specific OpenAI model
  tubechat summarize tAP1eZYEuKA --model gpt-4o

  # Prefer a Russian transcript and summary
  tubechat summarize tAP1eZYEuKA --language ru`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
}

func init() {
	addPipelineFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
