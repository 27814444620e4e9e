// Package fuzzy scores string similarity on a 0–100 scale using the Indel
// (insert/delete) edit distance, the same normalization rapidfuzz uses.
package fuzzy

import (
	"sort"
	"strings"
)

// ratio is the plain normalized Indel similarity of a and b, 0–100, the
// building block TokenSetRatio applies to its token strings. Two empty
// strings score 100.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	return normalized(indelDistance(ra, rb), len(ra)+len(rb))
}

// TokenSetRatio compares the whitespace token sets of a and b, ignoring order
// and duplicates. When one token set contains the other the score is 100. A
// side without tokens scores 0.
func TokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var intersect, diffAB, diffBA []string
	for t := range setA {
		if setB[t] {
			intersect = append(intersect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			diffBA = append(diffBA, t)
		}
	}
	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sort.Strings(intersect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	ab := []rune(strings.Join(diffAB, " "))
	ba := []rune(strings.Join(diffBA, " "))
	sectLen := len([]rune(strings.Join(intersect, " ")))

	sep := 0
	if sectLen > 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + len(ab)
	sectBALen := sectLen + sep + len(ba)

	result := normalized(indelDistance(ab, ba), sectABLen+sectBALen)
	if sectLen == 0 {
		return result
	}

	// "sect" against "sect ab" differs only by the appended tokens, so the
	// distance is their length plus the separator.
	sectABRatio := normalized(sep+len(ab), sectLen+sectABLen)
	sectBARatio := normalized(sep+len(ba), sectLen+sectBALen)
	return max(result, sectABRatio, sectBARatio)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func normalized(dist, lenSum int) float64 {
	if lenSum == 0 {
		return 100
	}
	return 100 - 100*float64(dist)/float64(lenSum)
}

// indelDistance is len(a)+len(b)-2*LCS(a, b).
func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return len(a) + len(b) - 2*prev[len(b)]
}
