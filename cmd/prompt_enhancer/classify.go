package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-enhancer/internal/observability"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify prompt complexity",
	Long:  `Scores a prompt as simple, medium or complex and prints the analysis. With model_assisted set and a Gemini key, the model refines the heuristic score.`,
	RunE:  runClassify,
}

var (
	classifyPrompt string
	classifyFile   string
	classifyJSON   bool
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyPrompt, "prompt", "p", "", "Prompt text")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Read the prompt from a file, or - for stdin")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the analysis as JSON")
	classifyCmd.MarkFlagsMutuallyExclusive("prompt", "file")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), classifyPrompt, classifyFile)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	analysis := a.service.Classify(cmd.Context(), prompt)
	if classifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(&analysis)
	return nil
}
