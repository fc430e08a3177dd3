package assembly

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/llm"
	"github.com/jonathan/prompt-enhancer/internal/prompts"
	"github.com/jonathan/prompt-enhancer/internal/tokens"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// DefaultRewriteTimeout bounds the rewrite call.
const DefaultRewriteTimeout = 15 * time.Second

// ModelAssembler asks a language model to tighten the deterministic draft.
// The draft is returned whenever the rewrite fails or breaks the ceiling.
type ModelAssembler struct {
	base    *Assembler
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewModelAssembler creates a model-backed assembler around base.
func NewModelAssembler(base *Assembler, client llm.Client, timeout time.Duration, logger *zap.Logger) *ModelAssembler {
	if base == nil {
		base = NewAssembler(nil)
	}
	if timeout <= 0 {
		timeout = DefaultRewriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelAssembler{base: base, client: client, timeout: timeout, logger: logger}
}

// Assemble builds the draft and returns the model's rewrite when it is usable.
func (m *ModelAssembler) Assemble(ctx context.Context, prompt string, ectx *types.EnhancementContext, pc types.PromptComplexity) string {
	draft := m.base.Assemble(prompt, ectx, pc)

	rewrite, err := m.rewrite(ctx, prompt, draft, Ceiling(prompt, pc.Level))
	if err != nil {
		m.logger.Warn("model rewrite discarded, using draft",
			zap.Error(err),
			zap.String("level", string(pc.Level)))
		return draft
	}
	return rewrite
}

func (m *ModelAssembler) rewrite(ctx context.Context, prompt, draft string, ceiling int) (out string, err error) {
	if m.client == nil {
		return "", &Error{Stage: "client", Cause: fmt.Errorf("no model client configured")}
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &Error{Stage: "call", Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if found := SuspiciousPhrases(draft); len(found) > 0 {
		m.logger.Warn("possible prompt injection in retrieved context",
			zap.Strings("phrases", found))
		draft = StripInjectionAttempts(draft)
	}

	system, err := prompts.Render(prompts.Enhancement, "assemble-system", map[string]string{
		"MaxTokens": strconv.Itoa(ceiling),
	})
	if err != nil {
		return "", &Error{Stage: "prompt", Cause: err}
	}
	user, err := prompts.Render(prompts.Enhancement, "assemble-user", map[string]string{
		"Prompt": Quote(prompt),
		"Draft":  Quote(draft),
	})
	if err != nil {
		return "", &Error{Stage: "prompt", Cause: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.client.GenerateContent(callCtx, llm.Request{System: system, Prompt: user, Tier: llm.TierStandard})
	if err != nil {
		return "", &Error{Stage: "call", Cause: err}
	}

	out = strings.TrimSpace(raw)
	if out == "" {
		return "", &Error{Stage: "check", Cause: ErrEmptyRewrite}
	}
	if tokens.Estimate(out) > ceiling {
		return "", &Error{Stage: "check", Cause: fmt.Errorf("%w: %d > %d", ErrOverCeiling, tokens.Estimate(out), ceiling)}
	}
	return out, nil
}
