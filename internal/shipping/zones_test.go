package shipping

import (
	"testing"

	"github.com/gaprints/prints-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZonesInDisplayOrder(t *testing.T) {
	zones := Zones()
	require.Len(t, zones, 3)
	assert.Equal(t, enums.ShippingZoneGreece, zones[0].Code)
	assert.Equal(t, enums.ShippingZoneEU, zones[1].Code)
	assert.Equal(t, enums.ShippingZoneWorld, zones[2].Code)
}

func TestRateFor(t *testing.T) {
	cases := map[enums.ShippingZone]int64{
		enums.ShippingZoneGreece: 5,
		enums.ShippingZoneEU:     15,
		enums.ShippingZoneWorld:  25,
	}
	for zone, want := range cases {
		rate, ok := RateFor(zone)
		require.True(t, ok, zone)
		assert.True(t, rate.Equal(decimal.NewFromInt(want)), "zone %s rate %s", zone, rate)
	}

	_, ok := RateFor("mars")
	assert.False(t, ok)
}

func TestMatchesZoneRate(t *testing.T) {
	assert.True(t, MatchesZoneRate(decimal.NewFromInt(15)))
	assert.True(t, MatchesZoneRate(decimal.RequireFromString("25.00")))
	assert.False(t, MatchesZoneRate(decimal.Zero))
	assert.False(t, MatchesZoneRate(decimal.NewFromFloat(4.99)))
}
