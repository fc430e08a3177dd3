//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhanceRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request EnhanceRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty prompt is allowed",
			request: EnhanceRequest{},
		},
		{
			name: "full request",
			request: EnhanceRequest{
				Prompt:  "Build a todo app",
				Context: &RequestContext{Framework: "react", Style: "minimal"},
				Options: EnhanceOptions{MaxTokens: 2000, IncludeMetadata: true},
			},
		},
		{
			name:    "negative max tokens",
			request: EnhanceRequest{Prompt: "x", Options: EnhanceOptions{MaxTokens: -1}},
			wantErr: true,
			errMsg:  "gte",
		},
		{
			name:    "max tokens above limit",
			request: EnhanceRequest{Prompt: "x", Options: EnhanceOptions{MaxTokens: 50000}},
			wantErr: true,
			errMsg:  "lte",
		},
		{
			name:    "framework too long",
			request: EnhanceRequest{Context: &RequestContext{Framework: strings.Repeat("a", 65)}},
			wantErr: true,
			errMsg:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEnhanceRequest_Accessors(t *testing.T) {
	var empty EnhanceRequest
	assert.Empty(t, empty.Framework())
	assert.Empty(t, empty.Style())
	assert.Nil(t, empty.Project())

	project := &ProjectContext{Facts: []string{"uses Go"}}
	req := EnhanceRequest{Context: &RequestContext{Framework: "vue", Style: "terse", ProjectContext: project}}
	assert.Equal(t, "vue", req.Framework())
	assert.Equal(t, "terse", req.Style())
	assert.Same(t, project, req.Project())
}

func TestPriority_Max(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityMedium.Max(PriorityHigh))
	assert.Equal(t, PriorityHigh, PriorityHigh.Max(PriorityLow))
	assert.Equal(t, PriorityCritical, PriorityCritical.Max(PriorityHigh))
	assert.Equal(t, PriorityLow, Priority("unknown").Max(PriorityLow))
}

func TestComplexityLevel_Valid(t *testing.T) {
	assert.True(t, LevelSimple.Valid())
	assert.True(t, LevelMedium.Valid())
	assert.True(t, LevelComplex.Valid())
	assert.False(t, ComplexityLevel("trivial").Valid())
}

func TestDocumentationBundle_Combined(t *testing.T) {
	bundle := &DocumentationBundle{
		PerLibraryContent: map[string]string{
			"/b/lib": "second",
			"/a/lib": "first",
		},
		SucceededLibraryIDs: []string{"/a/lib", "/b/lib"},
	}
	assert.Equal(t, "first\n\nsecond", bundle.Combined())
	assert.False(t, bundle.Empty())

	fallback := &DocumentationBundle{
		PerLibraryContent: map[string]string{FallbackLibraryID: "canned"},
		Libraries:         []string{FallbackLibraryID},
		Fallback:          true,
	}
	assert.Equal(t, "canned", fallback.Combined())

	var nilBundle *DocumentationBundle
	assert.True(t, nilBundle.Empty())
}

func TestFrameworkDetectionResult_Primary(t *testing.T) {
	var nilResult *FrameworkDetectionResult
	assert.Empty(t, nilResult.Primary())

	result := &FrameworkDetectionResult{DetectedFrameworks: []string{"react", "typescript"}}
	assert.Equal(t, "react", result.Primary())
}
