package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-enhancer/internal/enhance"
	"github.com/jonathan/prompt-enhancer/internal/observability"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// snippetSeparator is the line that splits a --snippets file into individual snippets.
const snippetSeparator = "---"

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Enhance a prompt with framework documentation and project context",
	Long: `Runs the full pipeline: classify -> detect -> select -> fetch -> extract -> assemble.

The prompt comes from --prompt, or --file (use "-" for stdin). Project context is optional:
--fact and --deps describe the repository, --snippets points to a file of code snippets
separated by lines containing only "---".`,
	RunE: runEnhance,
}

var (
	enhancePrompt    string
	enhanceFile      string
	enhanceFramework string
	enhanceStyle     string
	enhanceFacts     []string
	enhanceSnippets  string
	enhanceDeps      []string
	enhanceMaxTokens int
	enhanceMetadata  bool
	enhanceCache     bool
	enhanceRender    bool
	enhanceJSON      bool
)

func init() {
	enhanceCmd.Flags().StringVarP(&enhancePrompt, "prompt", "p", "", "Prompt text")
	enhanceCmd.Flags().StringVarP(&enhanceFile, "file", "f", "", "Read the prompt from a file, or - for stdin")
	enhanceCmd.Flags().StringVar(&enhanceFramework, "framework", "", "Explicit framework, skips detection")
	enhanceCmd.Flags().StringVar(&enhanceStyle, "style", "", "Preferred coding style")
	enhanceCmd.Flags().StringArrayVar(&enhanceFacts, "fact", nil, "Repository fact (repeatable)")
	enhanceCmd.Flags().StringVar(&enhanceSnippets, "snippets", "", "File of code snippets separated by --- lines")
	enhanceCmd.Flags().StringSliceVar(&enhanceDeps, "deps", nil, "Project dependencies, comma separated")
	enhanceCmd.Flags().IntVar(&enhanceMaxTokens, "max-tokens", 0, "Documentation token budget (0 uses the configured value)")
	enhanceCmd.Flags().BoolVar(&enhanceMetadata, "metadata", false, "Include pipeline metadata in --json output")
	enhanceCmd.Flags().BoolVar(&enhanceCache, "cache", false, "Read and write the result cache")
	enhanceCmd.Flags().BoolVar(&enhanceRender, "render", false, "Render the enhanced prompt as markdown")
	enhanceCmd.Flags().BoolVar(&enhanceJSON, "json", false, "Print the full result as JSON")
	enhanceCmd.MarkFlagsMutuallyExclusive("prompt", "file")
	enhanceCmd.MarkFlagsMutuallyExclusive("render", "json")

	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), enhancePrompt, enhanceFile)
	if err != nil {
		return err
	}
	req, err := buildRequest(prompt)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(configPath)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	var onProgress enhance.ProgressCallback
	if cfg.Verbose {
		onProgress = progressPrinter(printer)
	}

	a, err := newApp(cmd.Context(), cfg, logger, appOptions{persistent: true, onProgress: onProgress})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Enhance(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("enhance failed: %w", err)
	}

	if cfg.Verbose {
		printer.PrintContextUsed(&result.ContextUsed)
	}
	return writeResult(cmd.OutOrStdout(), result)
}

// readPrompt returns the prompt from the flag or file. An empty prompt is allowed.
func readPrompt(stdin io.Reader, prompt, file string) (string, error) {
	switch file {
	case "":
		return prompt, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %s: %w", file, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
}

// buildRequest assembles the request from the enhance flags.
func buildRequest(prompt string) (types.EnhanceRequest, error) {
	req := types.EnhanceRequest{
		Prompt: prompt,
		Options: types.EnhanceOptions{
			MaxTokens:       enhanceMaxTokens,
			IncludeMetadata: enhanceMetadata,
			UseCache:        enhanceCache,
		},
	}

	project := &types.ProjectContext{Facts: enhanceFacts, Dependencies: enhanceDeps}
	if enhanceSnippets != "" {
		data, err := os.ReadFile(enhanceSnippets)
		if err != nil {
			return req, fmt.Errorf("failed to read snippets file %s: %w", enhanceSnippets, err)
		}
		project.CodeSnippets = splitSnippets(string(data))
	}

	hasProject := len(project.Facts) > 0 || len(project.Dependencies) > 0 || len(project.CodeSnippets) > 0
	if enhanceFramework != "" || enhanceStyle != "" || hasProject {
		req.Context = &types.RequestContext{Framework: enhanceFramework, Style: enhanceStyle}
		if hasProject {
			req.Context.ProjectContext = project
		}
	}
	return req, nil
}

// splitSnippets splits data on lines that contain only the separator.
func splitSnippets(data string) []string {
	var (
		snippets []string
		current  []string
	)
	flush := func() {
		if s := strings.TrimSpace(strings.Join(current, "\n")); s != "" {
			snippets = append(snippets, s)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == snippetSeparator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return snippets
}

func writeResult(out io.Writer, result *types.EnhanceResult) error {
	switch {
	case enhanceJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case enhanceRender:
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		rendered, err := renderer.Render(result.EnhancedPrompt)
		if err != nil {
			return fmt.Errorf("failed to render prompt: %w", err)
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	default:
		_, err := fmt.Fprintln(out, result.EnhancedPrompt)
		return err
	}
}

// progressPrinter shows each pipeline step, with a detail box for the steps that carry one.
func progressPrinter(p *observability.Printer) enhance.ProgressCallback {
	return func(e enhance.ProgressEvent) {
		p.PrintStep(e.Step, e.Message)
		switch content := e.Content.(type) {
		case types.ComplexityAnalysis:
			p.PrintAnalysis(&content)
		case types.FrameworkDetectionResult:
			p.PrintDetection(&content, nil)
		case []types.QualityRequirement:
			p.PrintRequirements(content)
		}
	}
}
