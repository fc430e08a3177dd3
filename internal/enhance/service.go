// Package enhance runs the full prompt enhancement pipeline:
// classify, detect, select, fetch, extract, then assemble.
package enhance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/assembly"
	"github.com/jonathan/prompt-enhancer/internal/complexity"
	"github.com/jonathan/prompt-enhancer/internal/docs"
	"github.com/jonathan/prompt-enhancer/internal/docsource"
	"github.com/jonathan/prompt-enhancer/internal/frameworks"
	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/llm"
	"github.com/jonathan/prompt-enhancer/internal/quality"
	"github.com/jonathan/prompt-enhancer/internal/tasks"
	"github.com/jonathan/prompt-enhancer/internal/tokens"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// DefaultFetchTokens is the documentation budget when a request sets none.
const DefaultFetchTokens = 4000

// ProgressEvent reports that a pipeline step finished.
type ProgressEvent struct {
	RequestID string `json:"request_id"`
	Step      string `json:"step"`
	Message   string `json:"message"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called after each pipeline step.
type ProgressCallback func(event ProgressEvent)

type progressKey struct{}

// WithProgress returns a context whose Enhance calls also report to cb,
// in addition to the service-wide callback.
func WithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

// Options wires the service. Every field is optional.
type Options struct {
	Tables *heuristics.Tables
	// Source is the documentation service; nil disables retrieval and uses fallback docs.
	Source docsource.Source
	// LLM enables the model-assisted classifier and, with AIAssembly, the model rewrite.
	LLM          llm.Client
	AIAssembly   bool
	ModelTimeout time.Duration
	FetchTimeout time.Duration
	Concurrency  int
	FetchTokens  int
	Cache        Cache
	Todos        TodoSink
	Logger       *zap.Logger
	OnProgress   ProgressCallback
}

// Service is the top-level enhance operation. It holds no per-request state.
type Service struct {
	tables     *heuristics.Tables
	classifier complexity.Classifier
	detector   *frameworks.Detector
	selector   *frameworks.Selector
	retriever  *docs.Retriever
	extractor  *quality.Extractor
	assembler  *assembly.Assembler
	rewriter   *assembly.ModelAssembler
	decomposer *tasks.Decomposer

	cache       Cache
	todos       TodoSink
	fetchTokens int
	logger      *zap.Logger
	onProgress  ProgressCallback
}

// NewService builds a service from opts.
func NewService(opts Options) *Service {
	tables := opts.Tables
	if tables == nil {
		tables = heuristics.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	source := opts.Source
	if source == nil {
		source = docsource.Unavailable{}
	}
	fetchTokens := opts.FetchTokens
	if fetchTokens <= 0 {
		fetchTokens = DefaultFetchTokens
	}

	deterministic := complexity.NewDeterministic(tables)
	var classifier complexity.Classifier = deterministic
	if opts.LLM != nil {
		classifier = complexity.NewModelAssisted(opts.LLM, deterministic, opts.ModelTimeout, logger.Named("complexity"))
	}

	assembler := assembly.NewAssembler(tables)
	var rewriter *assembly.ModelAssembler
	if opts.LLM != nil && opts.AIAssembly {
		rewriter = assembly.NewModelAssembler(assembler, opts.LLM, opts.ModelTimeout, logger.Named("assembly"))
	}

	return &Service{
		tables:     tables,
		classifier: classifier,
		detector:   frameworks.NewDetector(tables, logger.Named("detector")),
		selector:   frameworks.NewSelector(source, tables, logger.Named("selector")),
		retriever: docs.NewRetriever(source, tables, docs.RetrieverOptions{
			Concurrency: opts.Concurrency,
			Timeout:     opts.FetchTimeout,
			Logger:      logger.Named("docs"),
		}),
		extractor:   quality.NewExtractor(tables, logger.Named("quality")),
		assembler:   assembler,
		rewriter:    rewriter,
		decomposer:  tasks.NewDecomposer(tables),
		cache:       opts.Cache,
		todos:       opts.Todos,
		fetchTokens: fetchTokens,
		logger:      logger,
		onProgress:  opts.OnProgress,
	}
}

// Tables returns the heuristic tables in use.
func (s *Service) Tables() *heuristics.Tables {
	return s.tables
}

// Enhance turns a prompt into an enhanced prompt. Only an invalid request or an assembler
// failure returns an error; every other stage degrades to its safe default.
func (s *Service) Enhance(ctx context.Context, req types.EnhanceRequest) (*types.EnhanceResult, error) {
	if err := req.Validate(); err != nil {
		return nil, &Error{Stage: "validate", Cause: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))

	key := CacheKey(req, s.tables.Version)
	if req.Options.UseCache {
		if cached := s.lookup(ctx, key, logger); cached != nil {
			cached.ContextUsed.RequestID = requestID
			cached.ContextUsed.CacheHit = true
			logger.Debug("enhance served from cache")
			return cached, nil
		}
	}

	prompt := req.Prompt
	project := req.Project()

	analysis := s.classifier.Analyze(ctx, prompt)
	s.emit(ctx, requestID, "classify", fmt.Sprintf("level %s, score %.1f", analysis.Level, analysis.Score), analysis)

	detection := s.detector.Detect(prompt, project, req.Framework())
	s.emit(ctx, requestID, "detect", frameworks.String(detection), detection)

	libraries := s.selector.Select(ctx, prompt, detection.DetectedFrameworks, analysis.Level)
	detection.LibraryIDs = libraryIDs(libraries)
	s.emit(ctx, requestID, "select", fmt.Sprintf("%d libraries", len(libraries)), libraries)

	fetchTokens := s.fetchTokens
	if req.Options.MaxTokens > 0 {
		fetchTokens = req.Options.MaxTokens
	}
	bundle := s.retriever.FetchDocs(ctx, detection.LibraryIDs, prompt, fetchTokens)
	s.emit(ctx, requestID, "fetch", fmt.Sprintf("%d of %d libraries, fallback %t",
		len(bundle.SucceededLibraryIDs), len(detection.LibraryIDs), bundle.Fallback), nil)

	requirements := s.extractor.Extract(prompt, detection.Primary(), project)
	s.emit(ctx, requestID, "extract", fmt.Sprintf("%d requirements", len(requirements)), requirements)

	ectx := buildContext(project, req.Style(), bundle, requirements, &detection)
	enhanced, err := s.assemble(ctx, prompt, ectx, analysis.PromptComplexity)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, requestID, "assemble", fmt.Sprintf("%d tokens", tokens.Estimate(enhanced)), nil)

	todos := s.decomposer.Decompose(prompt)
	if len(todos) > 0 && s.todos != nil {
		if err := s.todos.AddTodos(ctx, requestID, todos); err != nil {
			logger.Warn("todo sink rejected items", zap.Error(err), zap.Int("count", len(todos)))
		}
	}

	result := &types.EnhanceResult{
		EnhancedPrompt: enhanced,
		ContextUsed: types.ContextUsed{
			RequestID:           requestID,
			Level:               analysis.Level,
			Score:               analysis.Score,
			Frameworks:          detection.DetectedFrameworks,
			DetectionMethod:     detection.Method,
			LibraryIDs:          detection.LibraryIDs,
			SucceededLibraryIDs: bundle.SucceededLibraryIDs,
			FallbackDocs:        bundle.Fallback,
			RequirementTypes:    quality.Types(requirements),
			EstimatedTokens:     tokens.Estimate(enhanced),
		},
	}
	if req.Options.IncludeMetadata {
		result.ContextUsed.Metadata = &types.Metadata{
			Analysis:            analysis,
			Detection:           &detection,
			Libraries:           libraries,
			QualityRequirements: requirements,
			Todos:               todos,
			TablesVersion:       s.tables.Version,
		}
	}

	if req.Options.UseCache {
		s.store(ctx, key, result, logger)
	}
	logger.Info("prompt enhanced",
		zap.String("level", string(analysis.Level)),
		zap.Strings("frameworks", detection.DetectedFrameworks),
		zap.Bool("fallback_docs", bundle.Fallback),
		zap.Int("tokens", result.ContextUsed.EstimatedTokens))
	return result, nil
}

// Classify returns the complexity analysis of prompt.
func (s *Service) Classify(ctx context.Context, prompt string) types.ComplexityAnalysis {
	return s.classifier.Analyze(ctx, prompt)
}

// Decompose reports whether prompt warrants decomposition and returns its todo items.
func (s *Service) Decompose(prompt string) (bool, []types.TodoItem) {
	todos := s.decomposer.Decompose(prompt)
	return len(todos) > 0, todos
}

// assemble runs the rewrite path when enabled. A panic in the assembler is the one
// failure that reaches the caller.
func (s *Service) assemble(ctx context.Context, prompt string, ectx *types.EnhancementContext, pc types.PromptComplexity) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &Error{Stage: "assemble", Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if s.rewriter != nil {
		return s.rewriter.Assemble(ctx, prompt, ectx, pc), nil
	}
	return s.assembler.Assemble(prompt, ectx, pc), nil
}

func (s *Service) lookup(ctx context.Context, key string, logger *zap.Logger) *types.EnhanceResult {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", zap.Error(err))
		return nil
	}
	return cached
}

func (s *Service) store(ctx context.Context, key string, result *types.EnhanceResult, logger *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, result); err != nil {
		logger.Warn("cache store failed", zap.Error(err))
	}
}

func (s *Service) emit(ctx context.Context, requestID, step, message string, content any) {
	event := ProgressEvent{RequestID: requestID, Step: step, Message: message, Content: content}
	if s.onProgress != nil {
		s.onProgress(event)
	}
	if cb, ok := ctx.Value(progressKey{}).(ProgressCallback); ok && cb != nil {
		cb(event)
	}
}

// buildContext gathers everything the assembler reads. Framework docs follow detection order.
func buildContext(project *types.ProjectContext, style string, bundle *types.DocumentationBundle,
	reqs []types.QualityRequirement, detection *types.FrameworkDetectionResult) *types.EnhancementContext {
	ectx := &types.EnhancementContext{
		Documentation:       bundle,
		QualityRequirements: reqs,
		Detection:           detection,
		Style:               style,
	}
	if project == nil {
		return ectx
	}
	ectx.RepoFacts = project.Facts
	ectx.CodeSnippets = project.CodeSnippets
	ectx.ProjectDocs = project.ProjectDocs
	for _, fw := range detection.DetectedFrameworks {
		if doc, ok := project.FrameworkDocs[fw]; ok {
			ectx.FrameworkDocs = append(ectx.FrameworkDocs, doc)
		}
	}
	return ectx
}

func libraryIDs(libs []types.LibraryCandidate) []string {
	ids := make([]string, 0, len(libs))
	for _, l := range libs {
		ids = append(ids, l.ID)
	}
	return ids
}
