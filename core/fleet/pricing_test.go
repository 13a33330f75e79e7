package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurgeMultiplierNoDemand(t *testing.T) {
	s := NewSurgePricing(PricingConfig{})
	assert.Equal(t, 1.0, s.Multiplier(coordAt(0, 0), 0, 5))
}

func TestSurgeMultiplierGrowsWithExcessDemand(t *testing.T) {
	s := NewSurgePricing(PricingConfig{Slope: 0.5, MaxMultiplier: 3})
	loc := coordAt(0, 0)
	for i := 0; i < 4; i++ {
		s.ObserveDemand(loc, 100)
	}
	// 4 inquiries over 2 vehicles: ratio 2, multiplier 1 + (2-1)*0.5.
	assert.InDelta(t, 1.5, s.Multiplier(loc, 100, 2), 1e-9)
	// Balanced demand stays at 1.
	assert.Equal(t, 1.0, s.Multiplier(loc, 100, 4))
}

func TestSurgeMultiplierCappedAndZeroSupply(t *testing.T) {
	s := NewSurgePricing(PricingConfig{Slope: 1, MaxMultiplier: 2.5})
	loc := coordAt(0, 0)
	for i := 0; i < 100; i++ {
		s.ObserveDemand(loc, 100)
	}
	assert.Equal(t, 2.5, s.Multiplier(loc, 100, 1))
	assert.Equal(t, 2.5, s.Multiplier(loc, 100, 0))
}

func TestSurgeMultiplierSeparateBinsAndZones(t *testing.T) {
	s := NewSurgePricing(PricingConfig{TimeBinSeconds: 900, ZoneCellM: 2000})
	loc := coordAt(0, 0)
	s.ObserveDemand(loc, 100)
	s.ObserveDemand(loc, 100)

	// Another time bin sees no demand.
	assert.Equal(t, 1.0, s.Multiplier(loc, 100+900, 1))
	// A far-away zone sees no demand.
	assert.Equal(t, 1.0, s.Multiplier(coordAt(50000, 50000), 100, 1))
}
