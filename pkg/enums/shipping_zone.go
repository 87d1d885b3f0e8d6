package enums

// ShippingZone is the destination bucket the shopper picks at checkout.
type ShippingZone string

const (
	ShippingZoneGreece ShippingZone = "gr"
	ShippingZoneEU     ShippingZone = "eu"
	ShippingZoneWorld  ShippingZone = "world"
)

var validShippingZones = []ShippingZone{
	ShippingZoneGreece,
	ShippingZoneEU,
	ShippingZoneWorld,
}

func (z ShippingZone) String() string {
	return string(z)
}

// ShippingZones lists every zone in display order.
func ShippingZones() []ShippingZone {
	out := make([]ShippingZone, len(validShippingZones))
	copy(out, validShippingZones)
	return out
}

// IsValid reports whether the value is a known ShippingZone.
func (z ShippingZone) IsValid() bool {
	for _, candidate := range validShippingZones {
		if candidate == z {
			return true
		}
	}
	return false
}
