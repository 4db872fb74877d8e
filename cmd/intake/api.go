package main

import (
	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running intake server via HTTP.

These commands require a running server (intake serve).
Use --server to specify a custom server URL.

Examples:
  intake api health                                # Check server health
  intake api images extract slip.jpg               # Extract orders from a photo
  intake api transcripts extract "Zwei Rustico"    # Extract orders from text
  intake api audio extract order.mp3               # Transcribe and extract`,
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Image extraction commands",
}

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Transcript extraction commands",
}

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Audio extraction commands",
}

var promptConfigCmd = &cobra.Command{
	Use:   "prompt-config",
	Short: "Extraction prompt commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Extraction as subcommand groups
	imagesCmd.AddCommand((&endpoints.ImagesExtractEndpoint{}).Command(getServerURL))
	transcriptsCmd.AddCommand((&endpoints.TranscriptsExtractEndpoint{}).Command(getServerURL))
	audioCmd.AddCommand((&endpoints.AudioExtractEndpoint{}).Command(getServerURL))

	// Prompt config as subcommand group
	promptConfigCmd.AddCommand((&endpoints.GetPromptConfigEndpoint{}).Command(getServerURL))
	promptConfigCmd.AddCommand((&endpoints.PutPromptConfigEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(imagesCmd)
	apiCmd.AddCommand(transcriptsCmd)
	apiCmd.AddCommand(audioCmd)
	apiCmd.AddCommand(promptConfigCmd)
	rootCmd.AddCommand(apiCmd)
}
