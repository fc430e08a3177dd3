package types

// Priority ranks a quality requirement.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities; unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Max returns the higher of two priorities.
func (p Priority) Max(other Priority) Priority {
	if other.Rank() > p.Rank() {
		return other
	}
	return p
}

// QualityRequirement is an explicit non-functional concern passed to the downstream generator.
type QualityRequirement struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
}

// TodoItem is a decomposed unit of work emitted to an external todo store.
type TodoItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`
}
