// Package units reconciles the two unit-count sources into one count per PIN.
package units

import (
	"strings"
	"unicode"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// DefaultUnits is assumed for parcels that neither source reports; they are
// treated as single-family.
const DefaultUnits = 1

var wordCounts = map[string]int{
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
	"SIX":   6,
}

// Counts maps PIN to total residential units.
type Counts map[string]int

// Lookup returns the unit count for pin, or DefaultUnits when it is unknown.
func (c Counts) Lookup(pin string) (int, bool) {
	if n, ok := c[pin]; ok {
		return n, true
	}
	return DefaultUnits, false
}

// Stats describes what reconciliation kept and discarded.
type Stats struct {
	CharacteristicsRows     int
	CharacteristicsUsable   int
	CharacteristicsUnusable int
	ValuationRows           int
	ValuationUsable         int
	ValuationUnusable       int
	Collisions              int
}

// NormalizePIN strips separators so keys from either schema compare equal.
func NormalizePIN(pin string) string {
	var b strings.Builder
	b.Grow(len(pin))
	for _, r := range pin {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseWordCount maps the characteristics table's word form to a number.
func ParseWordCount(v string) (int, bool) {
	n, ok := wordCounts[strings.ToUpper(strings.TrimSpace(v))]
	return n, ok
}

// Reconcile merges characteristics and valuation unit counts. When a PIN is in
// both, the characteristics value is kept.
func Reconcile(chars []types.UnitCharacteristicsRecord, vals []types.ValuationRecord) (Counts, Stats) {
	var stats Stats
	counts := make(Counts)

	stats.CharacteristicsRows = len(chars)
	for _, rec := range chars {
		if !rec.NumApartments.Valid {
			stats.CharacteristicsUnusable++
			continue
		}
		n, ok := ParseWordCount(rec.NumApartments.String)
		if !ok {
			stats.CharacteristicsUnusable++
			continue
		}
		pin := strings.TrimSpace(rec.PIN)
		if _, seen := counts[pin]; seen {
			continue
		}
		counts[pin] = n
		stats.CharacteristicsUsable++
	}

	type best struct {
		units int64
		year  int64
		hasYr bool
	}
	byKey := make(map[string]best)
	var order []string
	stats.ValuationRows = len(vals)
	for _, rec := range vals {
		if !rec.TotUnits.Valid || rec.TotUnits.Int64 < 0 {
			stats.ValuationUnusable++
			continue
		}
		key := NormalizePIN(rec.KeyPIN)
		if key == "" {
			stats.ValuationUnusable++
			continue
		}
		cand := best{units: rec.TotUnits.Int64, year: rec.Year.Int64, hasYr: rec.Year.Valid}
		cur, seen := byKey[key]
		if !seen {
			byKey[key] = cand
			order = append(order, key)
			continue
		}
		if beats(cand.units, cand.year, cand.hasYr, cur.units, cur.year, cur.hasYr) {
			byKey[key] = cand
		}
	}
	stats.ValuationUsable = len(order)

	for _, key := range order {
		if _, taken := counts[key]; taken {
			stats.Collisions++
			continue
		}
		counts[key] = int(byKey[key].units)
	}
	return counts, stats
}

// beats reports whether a candidate valuation row outranks the current one:
// more units first, then the more recent year. Equal rows keep the earlier one.
func beats(units, year int64, hasYear bool, curUnits, curYear int64, curHasYear bool) bool {
	if units != curUnits {
		return units > curUnits
	}
	if hasYear != curHasYear {
		return hasYear
	}
	return hasYear && year > curYear
}
