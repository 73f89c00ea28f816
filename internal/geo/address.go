package geo

import (
	"regexp"
	"strings"
)

// Address is the normalized form written into a location draft.
type Address struct {
	Locality string
	City     string
	State    string
	PinCode  string

	// Raw parts kept on saved locations and reports.
	Premise      string
	Route        string
	Neighborhood string
	Sublocality  string
}

var sectorPattern = regexp.MustCompile(`(?i)^Sector\s*\d+`)

func componentByType(components []AddressComponent, typ string) string {
	for _, c := range components {
		for _, t := range c.Types {
			if t == typ {
				return c.LongName
			}
		}
	}
	return ""
}

func componentsByTypes(components []AddressComponent, types ...string) []string {
	var out []string
	for _, c := range components {
		for _, t := range c.Types {
			for _, want := range types {
				if t == want {
					out = append(out, c.LongName)
				}
			}
		}
	}
	return out
}

// ParseAddress reduces a provider place to the normalized address.
// Geocoding providers return wildly inconsistent granularity, so the
// locality is derived by precedence, most specific human-addressable unit
// first:
//
//	premise > streetNumber+route > neighborhood > "Sector N, subCity" >
//	sector > subCity > route > raw sublocality > raw neighborhood >
//	formatted address
func ParseAddress(p *Place) Address {
	comps := p.Components

	premises := componentsByTypes(comps, "premise")
	premise := ""
	if len(premises) > 0 {
		premise = premises[0]
	}
	streetNumber := componentByType(comps, "street_number")
	route := componentByType(comps, "route")
	neighborhood := componentByType(comps, "neighborhood")
	sublocalities := componentsByTypes(comps,
		"sublocality",
		"sublocality_level_1",
		"sublocality_level_2",
		"sublocality_level_3",
		"sublocality_level_4",
	)

	var sector, subCity string
	for _, part := range sublocalities {
		if sector == "" && sectorPattern.MatchString(part) {
			sector = part
		}
		if subCity == "" && part != "" && !sectorPattern.MatchString(part) {
			subCity = part
		}
	}

	var locality string
	switch {
	case premise != "":
		locality = premise
	case streetNumber != "" && route != "":
		locality = streetNumber + " " + route
	case neighborhood != "":
		locality = neighborhood
	case sector != "" && subCity != "":
		locality = sector + ", " + subCity
	case sector != "":
		locality = sector
	case subCity != "":
		locality = subCity
	case route != "":
		locality = route
	case len(sublocalities) > 0:
		locality = sublocalities[0]
	default:
		locality = strings.TrimSpace(p.FormattedAddress)
	}

	city := componentByType(comps, "locality")
	if city == "" {
		city = componentByType(comps, "administrative_area_level_2")
	}
	if city == "" {
		city = componentByType(comps, "administrative_area_level_1")
	}

	sublocality := ""
	if len(sublocalities) > 0 {
		sublocality = sublocalities[0]
	}

	return Address{
		Locality:     locality,
		City:         city,
		State:        componentByType(comps, "administrative_area_level_1"),
		PinCode:      componentByType(comps, "postal_code"),
		Premise:      premise,
		Route:        route,
		Neighborhood: neighborhood,
		Sublocality:  sublocality,
	}
}
