package docsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// DefaultContext7BaseURL is the public Context7 API.
const DefaultContext7BaseURL = "https://context7.com/api/v2"

// DefaultTimeout is the HTTP timeout when no client is supplied.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Context7 is a Source backed by the Context7 documentation API.
type Context7 struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// Context7Options configures a Context7 client.
type Context7Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// searchResult is a library from GET /search.
type searchResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TrustScore  float64 `json:"trustScore"`
	TotalTokens int     `json:"totalTokens"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// infoSnippet is documentation content from GET /docs/info/{owner}/{repo}.
type infoSnippet struct {
	Breadcrumb    string `json:"breadcrumb"`
	Content       string `json:"content"`
	ContentTokens int    `json:"contentTokens"`
}

type infoResponse struct {
	Snippets []infoSnippet `json:"snippets"`
}

// NewContext7 creates a Context7 source. Without an API key every call fails with ErrNotConfigured.
func NewContext7(opts Context7Options) *Context7 {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultContext7BaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Context7{
		client:  opts.HTTPClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		logger:  opts.Logger,
	}
}

// IsConfigured reports whether an API key is set.
func (c *Context7) IsConfigured() bool {
	return c.apiKey != ""
}

// ResolveLibraryID searches for a library and returns candidates ordered by trust score.
func (c *Context7) ResolveLibraryID(ctx context.Context, name string) ([]types.LibraryCandidate, error) {
	if !c.IsConfigured() {
		return nil, &Error{Op: "resolve", Target: name, Message: "CONTEXT7_API_KEY not set", Cause: ErrNotConfigured}
	}

	reqURL := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(name))
	body, _, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, &Error{Op: "resolve", Target: name, Message: "search failed", Cause: err}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "resolve", Target: name, Message: "failed to decode search response", Cause: err}
	}
	if len(resp.Results) == 0 {
		return nil, &Error{Op: "resolve", Target: name, Message: "no results", Cause: ErrNotFound}
	}

	results := resp.Results
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TrustScore > results[j].TrustScore
	})

	candidates := make([]types.LibraryCandidate, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		candidates = append(candidates, types.LibraryCandidate{
			ID:     r.ID,
			Name:   r.Title,
			Topics: topicsFrom(r.Title + " " + r.Description),
		})
	}
	if len(candidates) == 0 {
		return nil, &Error{Op: "resolve", Target: name, Message: "no usable results", Cause: ErrNotFound}
	}

	c.logger.Debug("resolved library",
		zap.String("name", name),
		zap.String("id", candidates[0].ID),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// GetDocumentation fetches documentation for a library id such as "/vercel/next.js".
// JSON snippet responses are rendered as markdown sections; HTML bodies are converted to text.
func (c *Context7) GetDocumentation(ctx context.Context, libraryID, topic string, maxTokens int) (string, error) {
	if !c.IsConfigured() {
		return "", &Error{Op: "docs", Target: libraryID, Message: "CONTEXT7_API_KEY not set", Cause: ErrNotConfigured}
	}

	query := url.Values{}
	query.Set("type", "json")
	if topic != "" {
		query.Set("topic", topic)
	}
	if maxTokens > 0 {
		query.Set("tokens", strconv.Itoa(maxTokens))
	}
	reqURL := fmt.Sprintf("%s/docs/info/%s?%s", c.baseURL, strings.TrimPrefix(libraryID, "/"), query.Encode())

	body, contentType, err := c.get(ctx, reqURL)
	if err != nil {
		return "", &Error{Op: "docs", Target: libraryID, Message: "request failed", Cause: err}
	}

	var text string
	switch contentType {
	case "text/html":
		text, err = ExtractText(string(body))
	case "text/plain", "text/markdown":
		text = string(body)
	default:
		text, err = renderSnippets(body, maxTokens)
	}
	if err != nil {
		return "", &Error{Op: "docs", Target: libraryID, Message: "failed to read documentation", Cause: err}
	}
	return strings.TrimSpace(text), nil
}

func (c *Context7) get(ctx context.Context, reqURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, text/html;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return body, mediaType, nil
}

// renderSnippets joins info snippets as markdown sections, stopping once maxTokens is reached.
func renderSnippets(body []byte, maxTokens int) (string, error) {
	var resp infoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode documentation response: %w", err)
	}

	var sb strings.Builder
	total := 0
	for _, s := range resp.Snippets {
		content := strings.TrimSpace(s.Content)
		if content == "" {
			continue
		}
		if maxTokens > 0 && total >= maxTokens {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if s.Breadcrumb != "" {
			sb.WriteString("## ")
			sb.WriteString(s.Breadcrumb)
			sb.WriteString("\n\n")
		}
		sb.WriteString(content)
		total += s.ContentTokens
	}
	return sb.String(), nil
}

// topicsFrom derives topic words from a library title and description.
func topicsFrom(text string) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '-')
	}) {
		word = strings.Trim(word, ".-")
		if len(word) <= 3 || seen[word] {
			continue
		}
		seen[word] = true
		topics = append(topics, word)
	}
	return topics
}
