// Package shipping holds the flat per-zone shipping rates offered at checkout.
package shipping

import (
	"github.com/gaprints/prints-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Zone is one destination bucket and its flat rate in euros.
type Zone struct {
	Code  enums.ShippingZone `json:"code"`
	Label string             `json:"label"`
	Rate  decimal.Decimal    `json:"rate"`
}

var zoneTable = map[enums.ShippingZone]Zone{
	enums.ShippingZoneGreece: {Code: enums.ShippingZoneGreece, Label: "Ελλάδα", Rate: decimal.NewFromInt(5)},
	enums.ShippingZoneEU:     {Code: enums.ShippingZoneEU, Label: "Ευρώπη", Rate: decimal.NewFromInt(15)},
	enums.ShippingZoneWorld:  {Code: enums.ShippingZoneWorld, Label: "Υπόλοιπος κόσμος", Rate: decimal.NewFromInt(25)},
}

// Zones lists every zone in display order.
func Zones() []Zone {
	codes := enums.ShippingZones()
	out := make([]Zone, 0, len(codes))
	for _, code := range codes {
		out = append(out, zoneTable[code])
	}
	return out
}

// RateFor returns the flat rate of zone.
func RateFor(zone enums.ShippingZone) (decimal.Decimal, bool) {
	z, ok := zoneTable[zone]
	if !ok {
		return decimal.Zero, false
	}
	return z.Rate, true
}

// MatchesZoneRate reports whether amount equals one of the published rates.
func MatchesZoneRate(amount decimal.Decimal) bool {
	for _, z := range zoneTable {
		if z.Rate.Equal(amount) {
			return true
		}
	}
	return false
}
