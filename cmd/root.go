package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seasworthai",
	Short: "An API gateway that fronts chat, search, image and crypto services",
	Long: `SeasworthAI is a single-binary gateway for a browser client. It serves the
static pages of the app and exposes a small JSON API under /api that forwards
each request to a third-party service (Groq chat, Serper search, Clipdrop
images, CryptoCompare prices) using API keys that never leave the server.

It listens on port 3000 by default.`,
	Version: "1.0.0",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
