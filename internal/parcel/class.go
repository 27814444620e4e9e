// Package parcel labels parcels by assessment class and joins the address,
// parcel universe and unit-count tables.
package parcel

import (
	"strings"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// CondoClass is the condominium class code, counted with apartments for outreach.
const CondoClass = "299"

// IsHousing reports whether a class code is residential (2xx, 3xx or 9xx).
// Codes are compared as strings; "090" and "90" are different codes.
func IsHousing(class string) bool {
	return strings.HasPrefix(class, "2") ||
		strings.HasPrefix(class, "3") ||
		strings.HasPrefix(class, "9")
}

// IsApartment reports whether a class code is an apartment or condo class.
func IsApartment(class string) bool {
	switch {
	case class == CondoClass:
		return true
	case strings.HasPrefix(class, "3"):
		return class != "300" && class != "301"
	case strings.HasPrefix(class, "9"):
		return class != "900" && class != "901"
	}
	return false
}

// FilterApartments returns the apartment and condo rows of the parcel universe.
func FilterApartments(universe []types.ParcelUniverseRecord) []types.ParcelUniverseRecord {
	var out []types.ParcelUniverseRecord
	for _, rec := range universe {
		if IsApartment(rec.Class) {
			out = append(out, rec)
		}
	}
	return out
}
