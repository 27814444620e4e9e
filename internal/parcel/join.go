package parcel

import (
	"strings"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/units"
)

type joinKey struct {
	pin   string
	pin10 string
}

// JoinStats counts rows lost to the inner join.
type JoinStats struct {
	Joined             int
	UnmatchedAddresses int
	UnmatchedUniverse  int
}

// UnitStats counts how the unit-count left join resolved.
type UnitStats struct {
	Matched   int
	Defaulted int
}

// indexUniverse groups universe rows by (pin, pin10) keeping input order.
func indexUniverse(universe []types.ParcelUniverseRecord) map[joinKey][]int {
	idx := make(map[joinKey][]int, len(universe))
	for i, rec := range universe {
		k := joinKey{strings.TrimSpace(rec.PIN), strings.TrimSpace(rec.PIN10)}
		idx[k] = append(idx[k], i)
	}
	return idx
}

// innerJoin calls emit for every (address, universe) pair sharing both pin and
// pin10, in address order. A pin-only match is not a match.
func innerJoin(addresses []types.AddressRecord, universe []types.ParcelUniverseRecord, emit func(a *types.AddressRecord, u *types.ParcelUniverseRecord)) JoinStats {
	var stats JoinStats
	idx := indexUniverse(universe)
	used := make([]bool, len(universe))
	for i := range addresses {
		a := &addresses[i]
		matches := idx[joinKey{strings.TrimSpace(a.PIN), strings.TrimSpace(a.PIN10)}]
		if len(matches) == 0 {
			stats.UnmatchedAddresses++
			continue
		}
		for _, j := range matches {
			used[j] = true
			emit(a, &universe[j])
			stats.Joined++
		}
	}
	for _, u := range used {
		if !u {
			stats.UnmatchedUniverse++
		}
	}
	return stats
}

// Join combines address and parcel universe rows on (pin, pin10) and renames
// the mailing fields to taxpayer fields. Unit counts are attached separately.
func Join(addresses []types.AddressRecord, universe []types.ParcelUniverseRecord) ([]types.Parcel, JoinStats) {
	parcels := make([]types.Parcel, 0, len(addresses))
	stats := innerJoin(addresses, universe, func(a *types.AddressRecord, u *types.ParcelUniverseRecord) {
		parcels = append(parcels, types.Parcel{
			PIN:               strings.TrimSpace(a.PIN),
			Class:             strings.TrimSpace(u.Class),
			Latitude:          u.Latitude,
			Longitude:         u.Longitude,
			WardNum:           u.WardNum,
			CommunityAreaName: u.CommunityAreaName,
			PropertyAddress:   a.PropertyAddress,
			PropertyCity:      a.PropertyCity,
			PropertyState:     a.PropertyState,
			PropertyZip:       a.PropertyZip,
			TaxpayerName:      a.MailingName,
			TaxpayerAddress:   a.MailingAddress,
			TaxpayerCity:      a.MailingCity,
			TaxpayerState:     a.MailingState,
			TaxpayerZip:       a.MailingZip,
		})
	})
	return parcels, stats
}

// AttachUnits sets TotalUnits on every parcel, defaulting to one unit when
// neither unit-count source knows the PIN.
func AttachUnits(parcels []types.Parcel, counts units.Counts) UnitStats {
	var stats UnitStats
	for i := range parcels {
		n, ok := counts.Lookup(parcels[i].PIN)
		parcels[i].TotalUnits = n
		if ok {
			stats.Matched++
		} else {
			stats.Defaulted++
		}
	}
	return stats
}

// JoinOutreach builds the apartment/condo outreach list from address rows and
// an already filtered universe.
func JoinOutreach(addresses []types.AddressRecord, apartments []types.ParcelUniverseRecord) ([]types.OutreachParcel, JoinStats) {
	var out []types.OutreachParcel
	stats := innerJoin(addresses, apartments, func(a *types.AddressRecord, u *types.ParcelUniverseRecord) {
		out = append(out, types.OutreachParcel{
			PIN:               strings.TrimSpace(a.PIN),
			Class:             strings.TrimSpace(u.Class),
			Latitude:          u.Latitude,
			Longitude:         u.Longitude,
			WardNum:           u.WardNum,
			CommunityAreaName: u.CommunityAreaName,
			PropertyAddress:   a.PropertyAddress,
			PropertyCity:      a.PropertyCity,
			PropertyState:     a.PropertyState,
			PropertyZip:       a.PropertyZip,
			MailingName:       a.MailingName,
			MailingAddress:    a.MailingAddress,
			MailingCity:       a.MailingCity,
			MailingState:      a.MailingState,
			MailingZip:        a.MailingZip,
		})
	})
	return out, stats
}
