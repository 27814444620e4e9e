// Package landlord ranks taxpayer mailing addresses by the rental units they
// hold.
package landlord

import (
	"sort"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// IsRental reports whether a classified parcel is housing that its taxpayer
// does not live in.
func IsRental(p types.ClassifiedParcel) bool {
	return p.IsHousing && !p.IsOwnerOccupied
}

// RentalHousing returns the renter-occupied housing parcels in input order.
func RentalHousing(parcels []types.ClassifiedParcel) []types.ClassifiedParcel {
	var out []types.ClassifiedParcel
	for _, p := range parcels {
		if IsRental(p) {
			out = append(out, p)
		}
	}
	return out
}

type groupKey struct {
	address string
	city    string
}

// Aggregate groups renter-occupied housing by taxpayer address and city and
// sums their units. Rows missing either key are left out. Groups are sorted by
// total units, largest first; equal totals keep first-appearance order.
func Aggregate(parcels []types.ClassifiedParcel) []types.LandlordAggregate {
	index := make(map[groupKey]int)
	var groups []types.LandlordAggregate

	for _, p := range parcels {
		if !IsRental(p) || !p.TaxpayerAddress.Valid || !p.TaxpayerCity.Valid {
			continue
		}
		k := groupKey{p.TaxpayerAddress.String, p.TaxpayerCity.String}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, types.LandlordAggregate{
				TaxpayerAddress: k.address,
				TaxpayerCity:    k.city,
			})
		}
		groups[i].TotalUnitsCount += p.TotalUnits
		groups[i].ParcelCount++
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalUnitsCount > groups[b].TotalUnitsCount
	})
	return groups
}
