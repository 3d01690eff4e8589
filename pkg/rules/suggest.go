package rules

// maxSuggestDistance bounds how far a misspelt rule name may be from a
// registered one before no suggestion is offered.
const maxSuggestDistance = 3

// suggest returns the registered name closest to name, or "" when nothing
// is close enough.
func suggest(name string, names []string) string {
	best, bestDist := "", maxSuggestDistance+1

	for _, candidate := range names {
		dist := distance(name, candidate)
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	return best
}

// distance is the Levenshtein edit distance over runes, computed with a
// single column of length len(a)+1.
func distance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s2) == 0 {
		return len(s1)
	}

	column := make([]int, len(s1)+1)
	for idx := range column {
		column[idx] = idx
	}

	for col, r2 := range s2 {
		column[0] = col + 1
		diag := col

		for row, r1 := range s1 {
			prev := column[row+1]

			cost := 1
			if r1 == r2 {
				cost = 0
			}

			column[row+1] = min(column[row+1]+1, column[row]+1, diag+cost)
			diag = prev
		}
	}

	return column[len(s1)]
}
