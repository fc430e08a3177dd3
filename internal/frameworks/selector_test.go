package frameworks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// fakeResolver returns scripted catalogue entries and records lookups.
type fakeResolver struct {
	catalog map[string][]types.LibraryCandidate
	lookups []string
}

func (f *fakeResolver) ResolveLibraryID(_ context.Context, name string) ([]types.LibraryCandidate, error) {
	f.lookups = append(f.lookups, name)
	if c, ok := f.catalog[name]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func newCatalog() *fakeResolver {
	return &fakeResolver{catalog: map[string][]types.LibraryCandidate{
		"react": {
			{ID: "/facebook/react", Name: "React", Topics: []string{"components", "hooks", "state"}},
			{ID: "/other/react-lite", Name: "React Lite"},
		},
		"tailwind":   {{ID: "/tailwindlabs/tailwindcss", Name: "Tailwind CSS", Topics: []string{"utility", "responsive"}}},
		"typescript": {{ID: "/microsoft/typescript", Name: "TypeScript", Topics: []string{"types", "generics"}}},
		"html":       {{ID: "/mdn/html", Name: "HTML", Topics: []string{"elements", "forms"}}},
		"css":        {{ID: "/mdn/css", Name: "CSS", Topics: []string{"layout"}}},
	}}
}

func TestSelect_ScoresAndRanks(t *testing.T) {
	s := NewSelector(newCatalog(), nil, nil)
	prompt := "Create a responsive React component with hooks and style it with Tailwind"

	got := s.Select(context.Background(), prompt, []string{"react", "tailwind", "typescript"}, types.LevelComplex)

	require.Len(t, got, 3)
	// react: name 10 + topics components(3) hooks(3+5 literal) + component intent 8 = 29
	assert.Equal(t, "/facebook/react", got[0].ID)
	assert.Equal(t, 29, got[0].Score)
	// tailwind: name 10 + responsive(3+5) + style intent 8 = 26
	assert.Equal(t, "/tailwindlabs/tailwindcss", got[1].ID)
	assert.Equal(t, 26, got[1].Score)
	// typescript: name 10
	assert.Equal(t, "/microsoft/typescript", got[2].ID)
	assert.Equal(t, 10, got[2].Score)
}

func TestSelect_LimitByLevel(t *testing.T) {
	prompt := "Create a responsive React component with hooks and style it with Tailwind"
	frameworks := []string{"react", "tailwind", "typescript"}

	for level, want := range map[types.ComplexityLevel]int{
		types.LevelSimple:  1,
		types.LevelMedium:  2,
		types.LevelComplex: 3,
	} {
		s := NewSelector(newCatalog(), nil, nil)
		got := s.Select(context.Background(), prompt, frameworks, level)
		assert.Len(t, got, want, string(level))
	}
}

func TestSelect_Deterministic(t *testing.T) {
	prompt := "typescript generics with react hooks"
	frameworks := []string{"typescript", "react"}

	first := NewSelector(newCatalog(), nil, nil).Select(context.Background(), prompt, frameworks, types.LevelMedium)
	for i := 0; i < 5; i++ {
		again := NewSelector(newCatalog(), nil, nil).Select(context.Background(), prompt, frameworks, types.LevelMedium)
		assert.Equal(t, first, again)
	}
}

func TestSelect_FallbackLibraries(t *testing.T) {
	resolver := newCatalog()
	delete(resolver.catalog, "html")
	s := NewSelector(resolver, nil, nil)

	got := s.Select(context.Background(), "center a div with css layout", []string{"elm"}, types.LevelComplex)

	assert.Equal(t, []string{"elm", "html", "css"}, resolver.lookups, "stops after the first fallback resolves")
	require.Len(t, got, 1)
	assert.Equal(t, "/mdn/css", got[0].ID)
}

func TestSelect_DropsZeroScores(t *testing.T) {
	resolver := &fakeResolver{catalog: map[string][]types.LibraryCandidate{
		"vue": {{ID: "/unrelated/thing", Name: "Thing"}},
	}}
	s := NewSelector(resolver, nil, nil)

	got := s.Select(context.Background(), "anything", []string{"vue"}, types.LevelComplex)
	assert.Empty(t, got)
}

func TestSelect_NilResolver(t *testing.T) {
	s := NewSelector(nil, nil, nil)
	assert.Nil(t, s.Select(context.Background(), "react", []string{"react"}, types.LevelComplex))
}

func TestSelect_CancelledContext(t *testing.T) {
	resolver := newCatalog()
	s := NewSelector(resolver, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := s.Select(ctx, "react", []string{"react"}, types.LevelComplex)
	assert.Empty(t, got)
	assert.Empty(t, resolver.lookups)
}
