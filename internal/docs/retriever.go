package docs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prompt-enhancer/internal/docsource"
	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// DefaultConcurrency is how many libraries are fetched at once.
const DefaultConcurrency = 4

// topicKeywords is how many prompt keywords form the topic hint.
const topicKeywords = 3

// RetrieverOptions configures a Retriever.
type RetrieverOptions struct {
	// Concurrency bounds parallel fetches. Zero uses DefaultConcurrency.
	Concurrency int
	// Timeout bounds each library fetch. Zero leaves it to the caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Retriever fetches documentation for several libraries concurrently.
// A failed library is excluded from the bundle and never aborts the others.
type Retriever struct {
	source      docsource.Source
	tables      *heuristics.Tables
	concurrency int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewRetriever creates a retriever. A nil source behaves like docsource.Unavailable.
func NewRetriever(source docsource.Source, tables *heuristics.Tables, opts RetrieverOptions) *Retriever {
	if source == nil {
		source = docsource.Unavailable{}
	}
	if tables == nil {
		tables = heuristics.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Retriever{
		source:      source,
		tables:      tables,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
	}
}

// fetchResult is one library's outcome, written to its own slot.
type fetchResult struct {
	content string
	err     error
}

// FetchDocs retrieves documentation for each library with an equal share of maxTokens.
// Results are recombined in request order. When nothing succeeds the bundle carries
// fallback documentation for the prompt.
func (r *Retriever) FetchDocs(ctx context.Context, libraryIDs []string, prompt string, maxTokens int) *types.DocumentationBundle {
	ids := dedupe(libraryIDs)
	if len(ids) == 0 {
		return FallbackBundle(r.tables, prompt)
	}

	share := 0
	if maxTokens > 0 {
		share = maxTokens / len(ids)
	}
	topic := r.topic(prompt)

	results := make([]fetchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = r.fetchOne(gctx, id, topic, share)
			// failures stay in the slot; returning nil keeps the group from cancelling siblings
			return nil
		})
	}
	_ = g.Wait()

	bundle := &types.DocumentationBundle{PerLibraryContent: make(map[string]string)}
	for i, id := range ids {
		if results[i].err != nil {
			r.logger.Warn("documentation fetch failed",
				zap.String("library_id", id),
				zap.Error(results[i].err))
			continue
		}
		bundle.PerLibraryContent[id] = results[i].content
		bundle.SucceededLibraryIDs = append(bundle.SucceededLibraryIDs, id)
	}

	if len(bundle.SucceededLibraryIDs) == 0 {
		r.logger.Info("no documentation retrieved, using fallback", zap.Int("requested", len(ids)))
		return FallbackBundle(r.tables, prompt)
	}
	bundle.Libraries = append([]string(nil), bundle.SucceededLibraryIDs...)
	return bundle
}

func (r *Retriever) fetchOne(ctx context.Context, id, topic string, maxTokens int) (res fetchResult) {
	defer func() {
		if p := recover(); p != nil {
			res = fetchResult{err: fmt.Errorf("panic fetching %s: %v", id, p)}
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := r.source.GetDocumentation(ctx, id, topic, maxTokens)
	if err != nil {
		return fetchResult{err: err}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return fetchResult{err: fmt.Errorf("empty documentation for %s", id)}
	}
	r.logger.Debug("documentation fetched",
		zap.String("library_id", id),
		zap.Int("bytes", len(content)),
		zap.Duration("duration", time.Since(start)))
	return fetchResult{content: content}
}

// topic builds the retrieval hint from the first prompt keywords.
func (r *Retriever) topic(prompt string) string {
	keywords := r.tables.Keywords(prompt)
	if len(keywords) > topicKeywords {
		keywords = keywords[:topicKeywords]
	}
	return strings.Join(keywords, " ")
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
