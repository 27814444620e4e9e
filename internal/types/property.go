package types

import "database/sql"

// AddressRecord is one row of the parcel address dataset: the situs (property)
// address and the tax-bill mailing address for a PIN.
type AddressRecord struct {
	PIN   string
	PIN10 string

	PropertyAddress sql.NullString
	PropertyCity    sql.NullString
	PropertyState   sql.NullString
	PropertyZip     sql.NullString

	MailingName    sql.NullString
	MailingAddress sql.NullString
	MailingCity    sql.NullString
	MailingState   sql.NullString
	MailingZip     sql.NullString

	TaxYear sql.NullInt64
}

// ParcelUniverseRecord is one row of the parcel universe: class code and geography.
type ParcelUniverseRecord struct {
	PIN   string
	PIN10 string
	Class string

	Latitude          sql.NullFloat64
	Longitude         sql.NullFloat64
	WardNum           sql.NullString
	CommunityAreaName sql.NullString
}

// UnitCharacteristicsRecord comes from the multi-family improvement
// characteristics table. NumApartments is a word ("Two".."Six") or absent.
type UnitCharacteristicsRecord struct {
	PIN           string
	NumApartments sql.NullString
}

// ValuationRecord comes from the commercial valuation table. KeyPIN may
// contain separators ("13-26-100-001-0000").
type ValuationRecord struct {
	KeyPIN   string
	Year     sql.NullInt64
	TotUnits sql.NullInt64
}

// Parcel is an address row joined to its parcel universe row and unit count.
// Mailing fields are renamed to taxpayer fields at join time.
type Parcel struct {
	PIN               string
	Class             string
	Latitude          sql.NullFloat64
	Longitude         sql.NullFloat64
	WardNum           sql.NullString
	CommunityAreaName sql.NullString

	PropertyAddress sql.NullString
	PropertyCity    sql.NullString
	PropertyState   sql.NullString
	PropertyZip     sql.NullString

	TaxpayerName    sql.NullString
	TaxpayerAddress sql.NullString
	TaxpayerCity    sql.NullString
	TaxpayerState   sql.NullString
	TaxpayerZip     sql.NullString

	TotalUnits int
	Zoning     sql.NullString
}

// ClassifiedParcel carries the ownership verdict for a Parcel.
type ClassifiedParcel struct {
	Parcel

	IsCorporateOwned       bool
	IsHousing              bool
	IsApartment            bool
	IsOwnerOccupied        bool
	AddressSimilarityScore float64
	HasTenants             bool
}

// LandlordAggregate is one taxpayer mailing address with the units it holds
// across renter-occupied housing parcels.
type LandlordAggregate struct {
	TaxpayerAddress string
	TaxpayerCity    string
	TotalUnitsCount int
	ParcelCount     int
}

// OutreachParcel is an apartment or condo parcel for the outreach list. It
// keeps the source's mailing_* naming.
type OutreachParcel struct {
	PIN               string
	Class             string
	Latitude          sql.NullFloat64
	Longitude         sql.NullFloat64
	WardNum           sql.NullString
	CommunityAreaName sql.NullString

	PropertyAddress sql.NullString
	PropertyCity    sql.NullString
	PropertyState   sql.NullString
	PropertyZip     sql.NullString

	MailingName    sql.NullString
	MailingAddress sql.NullString
	MailingCity    sql.NullString
	MailingState   sql.NullString
	MailingZip     sql.NullString
}

// Bundle holds the four input tables of one run.
type Bundle struct {
	Addresses       []AddressRecord
	Universe        []ParcelUniverseRecord
	Characteristics []UnitCharacteristicsRecord
	Valuations      []ValuationRecord
}
