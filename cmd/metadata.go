package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tubechat/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL or ID]",
	Short: "Get metadata from YouTube video",
	Example: `  # Get metadata from YouTube video
  tubechat metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubechat metadata tAP1eZYEuKA

  # Save metadata to file
  tubechat metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  tubechat metadata tAP1eZYEuKA --pretty`,
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

		// Stored metadata is served without touching the API.
		metadata, err := app.Store().GetVideoMetadata(ctx, videoID)
		if errors.Is(err, internal.ErrNotFound) {
			if config.YouTubeAPIKey == "" {
				return fmt.Errorf("video %s is not stored and YOUTUBE_API_KEY is not set", videoID)
			}
			fetcher, ferr := internal.NewYouTube(ctx, config.YouTubeAPIKey)
			if ferr != nil {
				return ferr
			}
			metadata, err = fetcher.Metadata(ctx, videoID)
			if err == nil {
				err = app.Store().SaveVideoMetadata(ctx, metadata)
			}
		}
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			jsonData, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
