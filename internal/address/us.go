package address

import (
	"strings"
	"unicode"
)

var directionals = map[string]bool{
	"N": true, "S": true, "E": true, "W": true,
	"NE": true, "NW": true, "SE": true, "SW": true,
	"NORTH": true, "SOUTH": true, "EAST": true, "WEST": true,
	"NORTHEAST": true, "NORTHWEST": true, "SOUTHEAST": true, "SOUTHWEST": true,
}

var streetTypes = map[string]bool{
	"ST": true, "STREET": true, "AVE": true, "AV": true, "AVENUE": true,
	"BLVD": true, "BOULEVARD": true, "RD": true, "ROAD": true,
	"DR": true, "DRIVE": true, "CT": true, "COURT": true, "PL": true, "PLACE": true,
	"LN": true, "LANE": true, "PKWY": true, "PARKWAY": true, "TER": true, "TERRACE": true,
	"WAY": true, "HWY": true, "HIGHWAY": true, "CIR": true, "CIRCLE": true,
	"SQ": true, "SQUARE": true, "TRL": true, "TRAIL": true, "PLZ": true, "PLAZA": true,
	"EXPY": true, "ROW": true, "WALK": true, "ALY": true, "ALLEY": true, "PARK": true,
}

var occupancyTypes = map[string]bool{
	"APT": true, "APARTMENT": true, "UNIT": true, "STE": true, "SUITE": true,
	"FL": true, "FLOOR": true, "RM": true, "ROOM": true, "BLDG": true, "BUILDING": true,
	"DEPT": true, "LOT": true, "SPC": true, "TRLR": true, "PH": true,
}

// USTagger tags US street addresses with a small rule grammar: an optional PO
// box, house number, pre-directional, street name, street type,
// post-directional and unit designator. It only looks at the street line.
type USTagger struct{}

// Tag implements Tagger.
func (USTagger) Tag(normalized string) Result {
	toks := strings.Fields(normalized)
	b := NewBuilder()
	if len(toks) == 0 {
		return b.Result()
	}

	i := 0
	if n := boxPrefixLen(toks); n > 0 {
		b.Add(USPSBoxType, strings.Join(toks[:n], " "))
		i = n
		if i < len(toks) {
			b.Add(USPSBoxID, toks[i])
			i++
		}
	}

	for i < len(toks) && !isAddressNumber(toks[i]) {
		if occupancyTypes[toks[i]] && i+1 < len(toks) {
			b.Add(OccupancyType, toks[i])
			b.Add(OccupancyIdentifier, toks[i+1])
			i += 2
			continue
		}
		if !numberAhead(toks[i:]) {
			break
		}
		b.Add(BuildingName, toks[i])
		i++
	}

	for i < len(toks) {
		i = tagStreet(toks, i, b)
	}
	return b.Result()
}

// tagStreet tags one street address starting at toks[i] and returns the index
// of the first token it did not consume.
func tagStreet(toks []string, i int, b *Builder) int {
	if isAddressNumber(toks[i]) {
		b.Add(AddressNumber, toks[i])
		i++
		if i+1 < len(toks) && toks[i] == "1" && toks[i+1] == "2" {
			b.Add(AddressNumberSuffix, "1/2")
			i += 2
		}
	}
	if i >= len(toks) {
		return i
	}

	if directionals[toks[i]] && i+1 < len(toks) && !occupancyTypes[toks[i+1]] {
		b.Add(StreetNamePreDirectional, toks[i])
		i++
	}

	if i < len(toks) && !occupancyTypes[toks[i]] {
		b.Add(StreetName, toks[i])
		i++
		for i < len(toks) {
			t := toks[i]
			if streetTypes[t] && streetEndsAt(toks, i+1) {
				b.Add(StreetNamePostType, t)
				i++
				break
			}
			if directionals[t] && streetEndsAt(toks, i+1) {
				break
			}
			if occupancyTypes[t] || isAddressNumber(t) {
				break
			}
			b.Add(StreetName, t)
			i++
		}
	}

	if i < len(toks) && directionals[toks[i]] && streetEndsAt(toks, i+1) {
		b.Add(StreetNamePostDirectional, toks[i])
		i++
	}

	switch {
	case i < len(toks) && occupancyTypes[toks[i]]:
		b.Add(OccupancyType, toks[i])
		i++
		if i < len(toks) {
			b.Add(OccupancyIdentifier, toks[i])
			i = unitTail(toks, i+1, b)
		}
	case i < len(toks) && isAddressNumber(toks[i]) && onlyUnitWords(toks[i+1:]):
		// A bare number ending the line is a unit: "123 MAIN ST 2", "... AVE 2 N", "... AVE 3 REAR".
		b.Add(OccupancyIdentifier, toks[i])
		i = unitTail(toks, i+1, b)
	}
	return i
}

// unitWords qualify a unit identifier: "APT 2 REAR", "2 FL".
var unitWords = map[string]bool{
	"REAR": true, "FRONT": true, "FRNT": true, "UPPER": true, "LOWER": true,
	"BSMT": true, "BASEMENT": true, "GARDEN": true, "GDN": true,
}

func isUnitWord(t string) bool {
	return directionals[t] || occupancyTypes[t] || unitWords[t] ||
		(len(t) == 1 && unicode.IsLetter(rune(t[0])))
}

func onlyUnitWords(toks []string) bool {
	for _, t := range toks {
		if !isUnitWord(t) {
			return false
		}
	}
	return true
}

// unitTail folds the rest of the line into the unit identifier when it holds
// only unit words, so a split "2N" stays one unit.
func unitTail(toks []string, i int, b *Builder) int {
	if !onlyUnitWords(toks[i:]) {
		return i
	}
	for ; i < len(toks); i++ {
		b.Add(OccupancyIdentifier, toks[i])
	}
	return i
}

// streetEndsAt reports whether the street line is finished at toks[j]: the end,
// a unit designator, a number, or a final directional.
func streetEndsAt(toks []string, j int) bool {
	if j >= len(toks) {
		return true
	}
	t := toks[j]
	if occupancyTypes[t] || isAddressNumber(t) {
		return true
	}
	if directionals[t] {
		return j+1 >= len(toks) || occupancyTypes[toks[j+1]] || isAddressNumber(toks[j+1])
	}
	return false
}

// boxPrefixLen returns how many leading tokens spell a PO box designator.
func boxPrefixLen(toks []string) int {
	prefixes := [][]string{
		{"POST", "OFFICE", "BOX"},
		{"P", "O", "BOX"},
		{"PO", "BOX"},
		{"POB"},
		{"BOX"},
	}
	for _, p := range prefixes {
		if len(toks) < len(p) {
			continue
		}
		match := true
		for k := range p {
			if toks[k] != p[k] {
				match = false
				break
			}
		}
		if match {
			return len(p)
		}
	}
	return 0
}

func numberAhead(toks []string) bool {
	for _, t := range toks {
		if isAddressNumber(t) {
			return true
		}
	}
	return false
}

// isAddressNumber accepts digits optionally followed by one letter ("123",
// "123A"). Ordinals such as "2ND" are street names.
func isAddressNumber(t string) bool {
	if t == "" || !unicode.IsDigit(rune(t[0])) {
		return false
	}
	for k, r := range t {
		if unicode.IsDigit(r) {
			continue
		}
		return k == len(t)-1 && unicode.IsLetter(r)
	}
	return true
}
