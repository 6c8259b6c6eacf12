package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "promptswitcher",
		Short:         "Turn one image idea into prompts for six image generators",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serve := newServeCmd(&envFile)
	root.AddCommand(serve, newGenerateCmd(&envFile))

	// bare invocation runs the server
	root.RunE = serve.RunE

	return root
}
