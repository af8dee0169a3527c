package locator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

func TestFilterState_NewRegionClearsRefinements(t *testing.T) {
	f := locator.FilterState{}.
		WithRegion("Madrid").
		WithSubregion("Alcalá de Henares").
		WithPostalCode("28801")

	f = f.WithRegion("Barcelona")

	assert.Equal(t, "Barcelona", f.Region)
	assert.Empty(t, f.Subregion)
	assert.Empty(t, f.PostalCode)
}

func TestFilterState_SubregionRequiresRegion(t *testing.T) {
	f := locator.FilterState{}.WithSubregion("Getafe")
	assert.Empty(t, f.Subregion)

	f = f.WithRegion("Madrid").WithSubregion(" Getafe ")
	assert.Equal(t, "Getafe", f.Subregion)
}

func TestFilterState_NearMeReplacesEverything(t *testing.T) {
	f := locator.FilterState{Query: "sonrisa"}.WithRegion("Madrid")

	f = f.WithNearMe(locator.Coordinates{Latitude: 40.4, Longitude: -3.7})

	assert.Empty(t, f.Query)
	assert.Empty(t, f.Region)
	if assert.NotNil(t, f.NearMe) {
		assert.Equal(t, 40.4, f.NearMe.Latitude)
	}

	f = f.WithQuery("cl")
	assert.Nil(t, f.NearMe)
}

func TestFilterState_Triggers(t *testing.T) {
	tests := []struct {
		name   string
		filter locator.FilterState
		want   bool
	}{
		{"empty", locator.FilterState{}, false},
		{"two characters", locator.FilterState{Query: "Ma"}, false},
		{"padded two characters", locator.FilterState{Query: "  Ma  "}, false},
		{"three characters", locator.FilterState{Query: "Mad"}, true},
		{"three accented runes", locator.FilterState{Query: "Ávi"}, true},
		{"region only", locator.FilterState{Region: "Madrid"}, true},
		{"near me", locator.FilterState{NearMe: &locator.Coordinates{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Triggers(3))
		})
	}
}

func TestFilterState_Equal(t *testing.T) {
	a := locator.FilterState{Query: "x", NearMe: &locator.Coordinates{Latitude: 1, Longitude: 2}}
	b := locator.FilterState{Query: "x", NearMe: &locator.Coordinates{Latitude: 1, Longitude: 2}}
	assert.True(t, a.Equal(b))

	b.NearMe = nil
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(locator.FilterState{Query: "y", NearMe: a.NearMe}))
}

func TestSettings_QueryForRanking(t *testing.T) {
	st := locator.DefaultSettings()

	q, nearMe := st.QueryFor(locator.FilterState{Query: "sonrisa"})
	assert.False(t, nearMe)
	assert.False(t, q.OrderByDistance)
	assert.Equal(t, float64(10000000), q.MaxDistanceMeters)

	q, _ = st.QueryFor(locator.FilterState{}.WithRegion("Madrid"))
	assert.False(t, q.OrderByDistance)
	assert.Equal(t, "Madrid", q.Region)

	q, nearMe = st.QueryFor(locator.FilterState{NearMe: &locator.Coordinates{Latitude: 41.38, Longitude: 2.17}})
	assert.True(t, nearMe)
	assert.True(t, q.OrderByDistance)
	assert.Equal(t, float64(10000), q.MaxDistanceMeters)
}
