package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-enhancer/internal/observability"
	"github.com/jonathan/prompt-enhancer/internal/server"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Split a multi-part prompt into todo items",
	RunE:  runDecompose,
}

var (
	decomposePrompt string
	decomposeFile   string
	decomposeJSON   bool
)

func init() {
	decomposeCmd.Flags().StringVarP(&decomposePrompt, "prompt", "p", "", "Prompt text")
	decomposeCmd.Flags().StringVarP(&decomposeFile, "file", "f", "", "Read the prompt from a file, or - for stdin")
	decomposeCmd.Flags().BoolVar(&decomposeJSON, "json", false, "Print the todos as JSON")
	decomposeCmd.MarkFlagsMutuallyExclusive("prompt", "file")

	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, _ []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), decomposePrompt, decomposeFile)
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

	should, todos := a.service.Decompose(prompt)
	out := cmd.OutOrStdout()
	if decomposeJSON {
		if todos == nil {
			todos = []types.TodoItem{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.DecomposeResponse{ShouldDecompose: should, Todos: todos})
	}
	if !should {
		_, err := fmt.Fprintln(out, "Prompt does not need decomposition.")
		return err
	}
	observability.NewPrinter(out).PrintTodos(todos)
	return nil
}
