// Package textutil holds small, pure text-scoring helpers shared by the
// planner and reasoner (§4.4 seed-procedure scoring, §4.7 hop scoring both
// use the same tokenized Jaccard similarity).
package textutil

import "strings"

// Tokenize lowercases s and splits on anything that isn't a letter or digit,
// dropping empty tokens.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

// Jaccard returns |A∩B| / |A∪B| over the token sets of a and b. Two empty
// strings score 0, not NaN.
func Jaccard(a, b string) float64 {
	setA := toSet(Tokenize(a))
	setB := toSet(Tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
