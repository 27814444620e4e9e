// Package occupancy decides whether a parcel's taxpayer lives at the parcel.
package occupancy

import (
	"database/sql"
	"regexp"
	"strconv"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/fuzzy"
)

const (
	// DefaultThreshold is the minimum token-set score counted as a match.
	DefaultThreshold = 50.0
	// DefaultHouseNumberTolerance is the largest house-number gap still
	// considered the same address.
	DefaultHouseNumberTolerance = 10
)

var reCorporate = regexp.MustCompile(`(?i)\b(?:LLC|INC|TRUST|TRUSTEE|CORP|CO|CORPORATION)\b`)

// IsCorporate reports whether a taxpayer name contains an entity marker as a
// whole word. "SMITH CO" matches, "COOK COUNTY" does not.
func IsCorporate(name sql.NullString) bool {
	return name.Valid && reCorporate.MatchString(name.String)
}

// HasTenants is true for housing that is an apartment class or is not
// owner-occupied. An owner living in one unit of an apartment building still
// has tenants.
func HasTenants(isHousing, isApartment, ownerOccupied bool) bool {
	return isHousing && (isApartment || !ownerOccupied)
}

// Result is the verdict for one property/taxpayer address pair.
type Result struct {
	IsOwnerOccupied bool
	SimilarityScore float64
}

var noMatch = Result{}

// Classifier compares property and taxpayer addresses.
type Classifier struct {
	Tagger               address.Tagger
	Threshold            float64
	HouseNumberTolerance int
}

// NewClassifier returns a Classifier with the default threshold and tolerance.
func NewClassifier(tagger address.Tagger) *Classifier {
	return &Classifier{
		Tagger:               tagger,
		Threshold:            DefaultThreshold,
		HouseNumberTolerance: DefaultHouseNumberTolerance,
	}
}

// Classify decides owner occupancy. The first rule that applies wins:
//
//  1. corporate taxpayers are never owner-occupants;
//  2. identical raw addresses match with score 100;
//  3. a missing, non-numeric or too distant house number is a mismatch;
//  4. otherwise "number street" strings are scored with TokenSetRatio.
func (c *Classifier) Classify(property, taxpayer sql.NullString, corporate bool) Result {
	if corporate {
		return noMatch
	}
	if property.Valid && taxpayer.Valid && property.String == taxpayer.String {
		return Result{IsOwnerOccupied: true, SimilarityScore: 100}
	}

	p1 := address.Parse(c.Tagger, property)
	p2 := address.Parse(c.Tagger, taxpayer)

	num1, ok1 := p1.Number()
	num2, ok2 := p2.Number()
	if !ok1 || !ok2 {
		return noMatch
	}
	n1, err1 := strconv.Atoi(num1)
	n2, err2 := strconv.Atoi(num2)
	if err1 != nil || err2 != nil {
		return noMatch
	}
	if abs(n1-n2) > c.HouseNumberTolerance {
		return noMatch
	}

	score := fuzzy.TokenSetRatio(num1+" "+p1.Street(), num2+" "+p2.Street())
	return Result{IsOwnerOccupied: score >= c.Threshold, SimilarityScore: score}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
