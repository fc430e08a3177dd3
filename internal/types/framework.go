package types

// DetectionMethod records how frameworks were inferred for a prompt.
type DetectionMethod string

const (
	MethodExplicit DetectionMethod = "explicit"
	MethodPattern  DetectionMethod = "pattern"
	MethodProject  DetectionMethod = "project"
	MethodFallback DetectionMethod = "fallback"
)

// FrameworkDetectionResult holds the frameworks relevant to a prompt.
// DetectedFrameworks is never empty; a fallback result carries a single safe default.
type FrameworkDetectionResult struct {
	DetectedFrameworks []string        `json:"detected_frameworks"`
	Confidence         float64         `json:"confidence"`
	Suggestions        []string        `json:"suggestions,omitempty"`
	LibraryIDs         []string        `json:"library_ids,omitempty"`
	Method             DetectionMethod `json:"method"`
}

// Primary returns the highest-confidence framework, or "" if none.
func (r *FrameworkDetectionResult) Primary() string {
	if r == nil || len(r.DetectedFrameworks) == 0 {
		return ""
	}
	return r.DetectedFrameworks[0]
}

// LibraryCandidate is an external documentation source ranked by relevance to the prompt.
type LibraryCandidate struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Score  int      `json:"score"`
	Topics []string `json:"topics,omitempty"`
}

// ProjectContext carries facts about the user's repository, supplied by a repository-analysis collaborator.
// All fields are opaque text; the pipeline never indexes or mutates them.
type ProjectContext struct {
	Facts         []string          `json:"facts,omitempty"`
	CodeSnippets  []string          `json:"code_snippets,omitempty"`
	Dependencies  []string          `json:"dependencies,omitempty"`
	FrameworkDocs map[string]string `json:"framework_docs,omitempty"` // framework name -> doc text
	ProjectDocs   []string          `json:"project_docs,omitempty"`
}
