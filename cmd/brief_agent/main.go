// Package main provides the entry point for the company brief generator: a
// browser form and HTTP API server plus a one-shot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brief_agent",
	Short: "Company research brief generator",
	Long: `brief_agent researches a company on the web, summarizes what it finds into a fixed set of
report sections with an LLM, and exports the result as a PDF ("<company> - Intro.pdf").

Run it as a server (browser form + HTTP API) with 'serve', or once from the terminal with 'generate'.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
