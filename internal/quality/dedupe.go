package quality

import (
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// descriptionSeparator joins descriptions of merged requirements.
const descriptionSeparator = "; "

// Merge combines two requirements of the same type: the higher priority wins and
// descriptions are concatenated. Identical descriptions are not repeated.
func Merge(a, b types.QualityRequirement) types.QualityRequirement {
	out := types.QualityRequirement{
		Type:        a.Type,
		Priority:    a.Priority.Max(b.Priority),
		Description: a.Description,
	}
	switch {
	case b.Description == "" || containsPart(a.Description, b.Description):
		// nothing new
	case a.Description == "":
		out.Description = b.Description
	default:
		out.Description = a.Description + descriptionSeparator + b.Description
	}
	return out
}

// Deduplicate reduces requirements to one per type, keeping first-seen order.
// The input is not modified.
func Deduplicate(reqs []types.QualityRequirement) []types.QualityRequirement {
	index := make(map[string]int, len(reqs))
	out := make([]types.QualityRequirement, 0, len(reqs))
	for _, r := range reqs {
		if i, ok := index[r.Type]; ok {
			out[i] = Merge(out[i], r)
			continue
		}
		index[r.Type] = len(out)
		out = append(out, r)
	}
	return out
}

func containsPart(joined, part string) bool {
	for _, p := range strings.Split(joined, descriptionSeparator) {
		if p == part {
			return true
		}
	}
	return false
}
