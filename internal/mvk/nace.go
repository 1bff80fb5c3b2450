package mvk

import "strings"

// Division returns the two-digit NACE division prefix of a classification
// code ("62.01" → "62"). Codes shorter than two significant characters
// carry no division information and yield "".
func Division(code string) string {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

// SameMarket reports whether two NACE codes fall in the same broad industry
// division. Both codes must be present: a missing code never asserts
// sameness. Pure function, identical output for identical input.
func SameMarket(target, candidate string) bool {
	td := Division(target)
	cd := Division(candidate)
	return td != "" && cd != "" && td == cd
}

// heuristicNeedsConfirmation flags an entity for manual review when we know
// its industry differs from the target's. A missing candidate code means we
// know nothing, so the heuristic alone never flags it; backend hints or the
// explicit needs-confirmation list decide those.
func heuristicNeedsConfirmation(sameMarket bool, candidateNACE string) bool {
	return !sameMarket && strings.TrimSpace(candidateNACE) != ""
}
