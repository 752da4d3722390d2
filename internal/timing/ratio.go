package timing

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the SequenceMatcher similarity of a and b in [0, 1]: twice
// the number of matched runes over the total rune count. Two empty inputs
// are identical.
func Ratio(a, b []rune) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

// runeStrings turns each rune into its own element so the matcher compares
// characters rather than lines.
func runeStrings(rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
