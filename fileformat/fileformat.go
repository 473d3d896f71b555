// Package fileformat defines the business-partner upload format: the column
// catalog with its value types, and the conversion between flat records and
// the nested JSON payloads the partner API exchanges.
//
// The codec in the root package is format-agnostic; this package pins it to
// the concrete file format and layers typed cell validation on top.
package fileformat

import (
	"github.com/bpdmkit/partnerfile"
)

// Kind is the value type of a column.
type Kind int

const (
	String Kind = iota
	Float       // decimal comma in the file, number in the payload
	Bool        // 1/true/0/false in the file
	DateTime    // ISO-8601
	Enum        // one of ColumnSpec.Values
	Country     // ISO country code from CountryCodes
)

// ColumnSpec describes one column of the canonical upload format.
type ColumnSpec struct {
	Name     string
	Kind     Kind
	Values   []string // allowed values for Enum/Country columns
	Required bool     // cell must be non-empty on every record
	Optional bool     // column may be missing from an uploaded header
}

// Columns is the canonical upload header in order. Column names use the
// abbreviated spelling; the codec's path mapper expands them.
func Columns() []ColumnSpec {
	return []ColumnSpec{
		{Name: "externalId", Required: true},
		{Name: "name1", Required: true},
		{Name: "name2", Optional: true},
		{Name: "name3", Optional: true},
		{Name: "name4", Optional: true},
		{Name: "name5", Optional: true},
		{Name: "name6", Optional: true},
		{Name: "name7", Optional: true},
		{Name: "name8", Optional: true},
		{Name: "name9", Optional: true},
		{Name: "identifiers.type", Optional: true},
		{Name: "identifiers.value", Optional: true},
		{Name: "identifiers.issuingBody", Optional: true},
		{Name: "states.validFrom", Kind: DateTime, Optional: true},
		{Name: "states.validTo", Kind: DateTime, Optional: true},
		{Name: "states.type", Kind: Enum, Values: StatesTypes, Optional: true},
		{Name: "roles", Kind: Enum, Values: RoleValues, Optional: true},
		{Name: "legalEntity.legalEntityBpn", Optional: true},
		{Name: "legalEntity.legalName", Optional: true},
		{Name: "legalEntity.shortName", Optional: true},
		{Name: "legalEntity.legalForm", Optional: true},
		{Name: "legalEntity.classifications.type", Kind: Enum, Values: ClassificationsTypes, Optional: true},
		{Name: "legalEntity.classifications.code", Optional: true},
		{Name: "legalEntity.classifications.value", Optional: true},
		{Name: "legalEntity.states.validFrom", Kind: DateTime, Optional: true},
		{Name: "legalEntity.states.validTo", Kind: DateTime, Optional: true},
		{Name: "legalEntity.states.type", Kind: Enum, Values: StatesTypes, Optional: true},
		{Name: "site.siteBpn", Optional: true},
		{Name: "site.name", Optional: true},
		{Name: "site.states.validFrom", Kind: DateTime, Optional: true},
		{Name: "site.states.validTo", Kind: DateTime, Optional: true},
		{Name: "site.states.type", Kind: Enum, Values: StatesTypes, Optional: true},
		{Name: "address.addressBpn", Optional: true},
		{Name: "address.name", Optional: true},
		{Name: "address.addressType", Kind: Enum, Values: AddressTypes, Optional: true},
		{Name: "address.physical.geographicCoordinates.longitude", Kind: Float, Optional: true},
		{Name: "address.physical.geographicCoordinates.latitude", Kind: Float, Optional: true},
		{Name: "address.physical.geographicCoordinates.altitude", Kind: Float, Optional: true},
		{Name: "address.physical.country", Kind: Country, Values: CountryCodes, Optional: true},
		{Name: "address.physical.administrativeAreaLevel1", Optional: true},
		{Name: "address.physical.administrativeAreaLevel2", Optional: true},
		{Name: "address.physical.administrativeAreaLevel3", Optional: true},
		{Name: "address.physical.postalCode", Optional: true},
		{Name: "address.physical.city", Optional: true},
		{Name: "address.physical.district", Optional: true},
		{Name: "address.physical.street.namePrefix", Optional: true},
		{Name: "address.physical.street.additionalNamePrefix", Optional: true},
		{Name: "address.physical.street.name", Optional: true},
		{Name: "address.physical.street.nameSuffix", Optional: true},
		{Name: "address.physical.street.additionalNameSuffix", Optional: true},
		{Name: "address.physical.street.houseNumber", Optional: true},
		{Name: "address.physical.street.houseNumberSupplement", Optional: true},
		{Name: "address.physical.street.milestone", Optional: true},
		{Name: "address.physical.street.direction", Optional: true},
		{Name: "address.physical.companyPostalCode", Optional: true},
		{Name: "address.physical.industrialZone", Optional: true},
		{Name: "address.physical.building", Optional: true},
		{Name: "address.physical.floor", Optional: true},
		{Name: "address.physical.door", Optional: true},
		{Name: "address.alternate.geographicCoordinates.longitude", Kind: Float, Optional: true},
		{Name: "address.alternate.geographicCoordinates.latitude", Kind: Float, Optional: true},
		{Name: "address.alternate.geographicCoordinates.altitude", Kind: Float, Optional: true},
		{Name: "address.alternate.country", Kind: Country, Values: CountryCodes, Optional: true},
		{Name: "address.alternate.administrativeAreaLevel1", Optional: true},
		{Name: "address.alternate.postalCode", Optional: true},
		{Name: "address.alternate.city", Optional: true},
		{Name: "address.alternate.deliveryServiceType", Kind: Enum, Values: DeliveryServiceTypes, Optional: true},
		{Name: "address.alternate.deliveryServiceQualifier", Optional: true},
		{Name: "address.alternate.deliveryServiceNumber", Optional: true},
		{Name: "address.states.validFrom", Kind: DateTime, Optional: true},
		{Name: "address.states.validTo", Kind: DateTime, Optional: true},
		{Name: "address.states.type", Kind: Enum, Values: StatesTypes, Optional: true},
		{Name: "createdAt", Kind: DateTime, Optional: true},
		{Name: "updatedAt", Kind: DateTime, Optional: true},
		{Name: "isOwnCompanyData", Kind: Bool, Required: true},
	}
}

// Header returns the canonical column names in order.
func Header() []string {
	cols := Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// CanonicalSchema builds the codec schema for the canonical header. It only
// fails if the catalog itself is broken, so the error is a panic.
func CanonicalSchema() partnerfile.Schema {
	s, err := partnerfile.BuildSchema(Header())
	if err != nil {
		panic("fileformat: canonical header is invalid: " + err.Error())
	}
	return s
}

// specsByPath maps the canonical field path of each column to its spec.
// Upload headers may use alternate spellings; resolving through the path
// mapper makes the lookup spelling-independent.
func specsByPath() map[string]ColumnSpec {
	cols := Columns()
	m := make(map[string]ColumnSpec, len(cols))
	for _, c := range cols {
		m[partnerfile.ToPath(c.Name).String()] = c
	}
	return m
}

// RequiredColumns lists the column names every sealed record must populate,
// beyond the external identifier. Whether a name column is mandatory differs
// between format versions; this is the default set and callers may override
// it through configuration.
func RequiredColumns() []string {
	var names []string
	for _, c := range Columns() {
		if c.Required && c.Name != "externalId" {
			names = append(names, c.Name)
		}
	}
	return names
}
