package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackContent(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		contains []string
		absent   []string
	}{
		{
			name:     "markup",
			prompt:   "Write a semantic HTML page",
			contains: []string{"HTML best practices"},
			absent:   []string{"CSS best practices", "General best practices"},
		},
		{
			name:     "styling and scripting",
			prompt:   "Add a CSS theme switcher in JS",
			contains: []string{"CSS best practices", "JavaScript best practices"},
		},
		{
			name:     "general",
			prompt:   "Explain recursion",
			contains: []string{"General best practices"},
		},
		{
			name:     "empty prompt",
			prompt:   "",
			contains: []string{"General best practices"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackContent(nil, tt.prompt)
			assert.NotEmpty(t, got)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestFallbackBundle(t *testing.T) {
	b := FallbackBundle(nil, "style a button")
	assert.True(t, b.Fallback)
	assert.Equal(t, []string{"fallback"}, b.Libraries)
	assert.Contains(t, b.Combined(), "CSS best practices")
}
