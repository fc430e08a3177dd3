package complexity

import "github.com/jonathan/prompt-enhancer/internal/types"

// Budget is the token allowance each downstream stage receives for a level.
type Budget struct {
	Docs     int
	Snippets int
	Response int
	// Libraries is how many library candidates are kept.
	Libraries int
}

var budgets = map[types.ComplexityLevel]Budget{
	types.LevelSimple:  {Docs: 200, Snippets: 200, Response: 400, Libraries: 1},
	types.LevelMedium:  {Docs: 500, Snippets: 400, Response: 1200, Libraries: 2},
	types.LevelComplex: {Docs: 800, Snippets: 600, Response: 3200, Libraries: 3},
}

// BudgetFor returns the budget for a level. Unknown levels get the medium budget.
func BudgetFor(level types.ComplexityLevel) Budget {
	if b, ok := budgets[level]; ok {
		return b
	}
	return budgets[types.LevelMedium]
}

// StrategyFor maps a level to the response strategy the deterministic path reports.
func StrategyFor(level types.ComplexityLevel) types.ResponseStrategy {
	switch level {
	case types.LevelSimple:
		return types.StrategyMinimal
	case types.LevelComplex:
		return types.StrategyComprehensive
	default:
		return types.StrategyStandard
	}
}
