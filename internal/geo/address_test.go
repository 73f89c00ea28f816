package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func comp(name string, types ...string) AddressComponent {
	return AddressComponent{LongName: name, ShortName: name, Types: types}
}

func TestParseAddressLocalityPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		components []AddressComponent
		formatted  string
		want       string
	}{
		{
			name: "premise wins over everything",
			components: []AddressComponent{
				comp("Tower B, Orchid Petals", "premise"),
				comp("12", "street_number"),
				comp("Sohna Road", "route"),
				comp("DLF Phase 2", "neighborhood"),
			},
			want: "Tower B, Orchid Petals",
		},
		{
			name: "street number plus route",
			components: []AddressComponent{
				comp("12", "street_number"),
				comp("Sohna Road", "route"),
				comp("DLF Phase 2", "neighborhood"),
			},
			want: "12 Sohna Road",
		},
		{
			name: "route alone does not pair with missing street number",
			components: []AddressComponent{
				comp("Sohna Road", "route"),
				comp("DLF Phase 2", "neighborhood"),
			},
			want: "DLF Phase 2",
		},
		{
			name: "sector with sub-city",
			components: []AddressComponent{
				comp("Sector 15", "sublocality", "sublocality_level_2"),
				comp("Part 1", "sublocality", "sublocality_level_1"),
			},
			want: "Sector 15, Part 1",
		},
		{
			name: "sector alone",
			components: []AddressComponent{
				comp("Sector 21", "sublocality_level_1"),
			},
			want: "Sector 21",
		},
		{
			name: "sub-city alone",
			components: []AddressComponent{
				comp("Palam Vihar", "sublocality_level_1"),
			},
			want: "Palam Vihar",
		},
		{
			name: "route is the last structured fallback",
			components: []AddressComponent{
				comp("MG Road", "route"),
			},
			want: "MG Road",
		},
		{
			name:       "formatted address when nothing structured",
			components: []AddressComponent{},
			formatted:  "Gurgaon, Haryana, India",
			want:       "Gurgaon, Haryana, India",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAddress(&Place{Components: tt.components, FormattedAddress: tt.formatted})
			assert.Equal(t, tt.want, got.Locality)
		})
	}
}

func TestParseAddressCityFallbacks(t *testing.T) {
	// locality > administrative_area_level_2 > administrative_area_level_1
	got := ParseAddress(&Place{Components: []AddressComponent{
		comp("Gurgaon", "locality"),
		comp("Gurgaon District", "administrative_area_level_2"),
		comp("Haryana", "administrative_area_level_1"),
	}})
	assert.Equal(t, "Gurgaon", got.City)
	assert.Equal(t, "Haryana", got.State)

	got = ParseAddress(&Place{Components: []AddressComponent{
		comp("Gurgaon District", "administrative_area_level_2"),
		comp("Haryana", "administrative_area_level_1"),
	}})
	assert.Equal(t, "Gurgaon District", got.City)

	got = ParseAddress(&Place{Components: []AddressComponent{
		comp("Haryana", "administrative_area_level_1"),
	}})
	assert.Equal(t, "Haryana", got.City)
}

func TestParseAddressFullComponents(t *testing.T) {
	got := ParseAddress(&Place{Components: []AddressComponent{
		comp("Sector 15", "sublocality_level_1", "sublocality"),
		comp("Gurgaon", "locality"),
		comp("Haryana", "administrative_area_level_1"),
		comp("122001", "postal_code"),
	}})
	assert.Equal(t, "Sector 15", got.Locality)
	assert.Equal(t, "Gurgaon", got.City)
	assert.Equal(t, "Haryana", got.State)
	assert.Equal(t, "122001", got.PinCode)
	assert.Equal(t, "Sector 15", got.Sublocality)
}
