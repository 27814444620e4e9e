//go:build libpostal

// Package postal tags addresses with libpostal through gopostal. It needs cgo
// and an installed libpostal, so it is only built with the libpostal tag.
package postal

import (
	"strings"

	postal "github.com/openvenues/gopostal/parser"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
)

// labels maps libpostal component names onto the address package's labels.
// Components without an entry are ignored.
var labels = map[string]address.Label{
	"house_number": address.AddressNumber,
	"road":         address.StreetName,
	"unit":         address.OccupancyIdentifier,
	"po_box":       address.USPSBoxID,
	"house":        address.BuildingName,
	"city":         address.PlaceName,
	"state":        address.StateName,
	"postcode":     address.ZipCode,
}

// Tagger is an address.Tagger backed by libpostal's CRF parser.
type Tagger struct {
	options postal.ParserOptions
}

// New returns a Tagger that parses with US conventions.
func New() *Tagger {
	return &Tagger{options: postal.ParserOptions{Country: "us", Language: "en"}}
}

// Tag implements address.Tagger. libpostal returns one component per label
// run; a label seen twice is a conflict just like in address.USTagger.
func (t *Tagger) Tag(normalized string) address.Result {
	b := address.NewBuilder()
	if strings.TrimSpace(normalized) == "" {
		return b.Result()
	}
	for _, c := range postal.ParseAddressOptions(normalized, t.options) {
		label, ok := labels[c.Label]
		if !ok {
			continue
		}
		b.Add(label, strings.ToUpper(c.Value))
	}
	return b.Result()
}
