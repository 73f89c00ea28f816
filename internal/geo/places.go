package geo

import (
	"context"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

// ErrProviderUnavailable is returned when no places API key is configured.
// Location routes surface it as an explicit 503 instead of failing quietly.
var ErrProviderUnavailable = errors.New("places provider not configured")

// Coordinates is the normalized coordinate pair. Provider responses are
// reduced to this shape at the boundary; the polymorphic accessor shapes
// some provider SDK versions use never propagate inward.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// AddressComponent mirrors the provider's typed address parts.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Place is a resolved place: either a details fetch for a prediction or a
// reverse-geocode hit for device coordinates.
type Place struct {
	PlaceID          string             `json:"placeId"`
	Name             string             `json:"name"`
	FormattedAddress string             `json:"formattedAddress"`
	Components       []AddressComponent `json:"components"`
	Location         Coordinates        `json:"location"`
}

// PlacesClient is the boundary to the external places/geocoding provider.
// Predictions and Details share a session token so the provider can bill
// the search-then-select pair as one session.
type PlacesClient interface {
	Predictions(ctx context.Context, query, sessionToken string) ([]Prediction, error)
	Details(ctx context.Context, placeID, sessionToken string) (*Place, error)
	ReverseGeocode(ctx context.Context, coords Coordinates) (*Place, error)
}
