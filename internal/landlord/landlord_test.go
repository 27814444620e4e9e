package landlord

import (
	"database/sql"
	"testing"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

func rental(addr, city string, units int) types.ClassifiedParcel {
	return types.ClassifiedParcel{
		Parcel: types.Parcel{
			TaxpayerAddress: sql.NullString{String: addr, Valid: addr != ""},
			TaxpayerCity:    sql.NullString{String: city, Valid: city != ""},
			TotalUnits:      units,
		},
		IsHousing: true,
	}
}

func TestAggregate(t *testing.T) {
	owner := rental("9 ELM ST", "CHICAGO", 50)
	owner.IsOwnerOccupied = true
	commercial := rental("9 ELM ST", "CHICAGO", 50)
	commercial.IsHousing = false

	parcels := []types.ClassifiedParcel{
		rental("1 OAK ST", "CHICAGO", 2),
		rental("500 W MADISON", "CHICAGO", 3),
		owner,
		rental("500 W MADISON", "CHICAGO", 1),
		commercial,
		rental("1 OAK ST", "EVANSTON", 2),
		rental("500 W MADISON", "CHICAGO", 12),
		rental("", "CHICAGO", 40),
		rental("7 PINE AVE", "", 40),
	}

	got := Aggregate(parcels)
	want := []types.LandlordAggregate{
		{TaxpayerAddress: "500 W MADISON", TaxpayerCity: "CHICAGO", TotalUnitsCount: 16, ParcelCount: 3},
		{TaxpayerAddress: "1 OAK ST", TaxpayerCity: "CHICAGO", TotalUnitsCount: 2, ParcelCount: 1},
		{TaxpayerAddress: "1 OAK ST", TaxpayerCity: "EVANSTON", TotalUnitsCount: 2, ParcelCount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty", got)
	}
}

func TestRentalHousing(t *testing.T) {
	owner := rental("1 OAK ST", "CHICAGO", 1)
	owner.IsOwnerOccupied = true
	ownerApartment := rental("2 OAK ST", "CHICAGO", 6)
	ownerApartment.IsOwnerOccupied = true
	ownerApartment.IsApartment = true
	keep := rental("3 OAK ST", "CHICAGO", 1)

	got := RentalHousing([]types.ClassifiedParcel{owner, ownerApartment, keep})
	if len(got) != 1 || got[0].TaxpayerAddress.String != "3 OAK ST" {
		t.Errorf("RentalHousing = %+v, want only 3 OAK ST", got)
	}
}
