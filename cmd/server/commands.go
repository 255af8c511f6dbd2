package main

import (
	"fmt"
	"io"

	"geminibot/internal/chatbot"
	"geminibot/internal/config"
	"geminibot/internal/llm"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "geminibot",
		Short:         "Telegram bot that answers with Google Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("cannot start: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(newModelsCommand())
	return root
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models a chat can switch to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printModels(cmd.OutOrStdout())
		},
	}
}

func printModels(w io.Writer) {
	for _, model := range llm.Models() {
		marker := ""
		if model == llm.DefaultModel() {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%-24s %s%s\n", model, chatbot.ResetCommandFor(model), marker)
	}
}
