package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/HapoSeiz/AlertShip/pkg/cache"
	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/metrics"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"

	// Results are biased to the Gurgaon area and restricted to India,
	// matching the product's launch market.
	countryRestriction = "country:in"
	locationBias       = "rectangle:28.0,76.5|28.8,77.5"

	detailsCacheTTL = 10 * time.Minute
	predictionLRU   = 512
)

// GoogleClient talks to the Google Maps Web Service endpoints. Predictions
// are memoized in a bounded LRU and place details / reverse geocodes in the
// shared cache, so repeated lookups do not spend provider quota.
type GoogleClient struct {
	key     string
	baseURL string
	http    *http.Client

	predictions *lru.Cache[string, []Prediction]
	cache       cache.Cache
}

func NewGoogleClient(key string, shared cache.Cache) *GoogleClient {
	l, _ := lru.New[string, []Prediction](predictionLRU)
	return &GoogleClient{
		key:         key,
		baseURL:     defaultBaseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
		predictions: l,
		cache:       shared,
	}
}

// WithBaseURL points the client at a different host. Test helper.
func (g *GoogleClient) WithBaseURL(base string) *GoogleClient {
	g.baseURL = base
	return g
}

type statusPayload struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleClient) call(ctx context.Context, path string, params url.Values, out interface{}) error {
	if g.key == "" {
		return ErrProviderUnavailable
	}
	params.Set("key", g.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "places provider unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("places provider returned HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(s statusPayload) error {
	switch s.Status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		if s.ErrorMessage != "" {
			return errors.Errorf("places provider error: %s (%s)", s.Status, s.ErrorMessage)
		}
		return errors.Errorf("places provider error: %s", s.Status)
	}
}

type predictionsResponse struct {
	statusPayload
	Predictions []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

func (g *GoogleClient) Predictions(ctx context.Context, query, sessionToken string) ([]Prediction, error) {
	if cached, ok := g.predictions.Get(query); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("components", countryRestriction)
	params.Set("locationbias", locationBias)
	params.Set("sessiontoken", sessionToken)

	var resp predictionsResponse
	err := g.call(ctx, "/maps/api/place/autocomplete/json", params, &resp)
	if err == nil {
		err = checkStatus(resp.statusPayload)
	}
	metrics.RecordPlacesCall("autocomplete", err)
	if err != nil {
		return nil, err
	}

	preds := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		preds = append(preds, Prediction{PlaceID: p.PlaceID, Description: p.Description})
	}
	g.predictions.Add(query, preds)
	return preds, nil
}

// rawPlace is the wire shape shared by details and geocode results.
type rawPlace struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// normalize reduces the provider shape to a Place with a plain coordinate
// pair.
func (r rawPlace) normalize() *Place {
	return &Place{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Components:       r.AddressComponents,
		Location:         Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
	}
}

type detailsResponse struct {
	statusPayload
	Result rawPlace `json:"result"`
}

func (g *GoogleClient) Details(ctx context.Context, placeID, sessionToken string) (*Place, error) {
	cacheKey := "places:details:" + placeID
	if p, ok := g.cachedPlace(ctx, cacheKey); ok {
		return p, nil
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,address_component,geometry")
	params.Set("sessiontoken", sessionToken)

	var resp detailsResponse
	err := g.call(ctx, "/maps/api/place/details/json", params, &resp)
	if err == nil {
		err = checkStatus(resp.statusPayload)
	}
	metrics.RecordPlacesCall("details", err)
	if err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || resp.Result.PlaceID == "" {
		return nil, ErrNoResults
	}

	place := resp.Result.normalize()
	g.storePlace(ctx, cacheKey, place)
	return place, nil
}

type geocodeResponse struct {
	statusPayload
	Results []rawPlace `json:"results"`
}

func (g *GoogleClient) ReverseGeocode(ctx context.Context, coords Coordinates) (*Place, error) {
	cacheKey := fmt.Sprintf("places:reverse:%.5f,%.5f", coords.Lat, coords.Lng)
	if p, ok := g.cachedPlace(ctx, cacheKey); ok {
		return p, nil
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", coords.Lat, coords.Lng))

	var resp geocodeResponse
	err := g.call(ctx, "/maps/api/geocode/json", params, &resp)
	if err == nil {
		err = checkStatus(resp.statusPayload)
	}
	metrics.RecordPlacesCall("reverse_geocode", err)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}

	place := resp.Results[0].normalize()
	g.storePlace(ctx, cacheKey, place)
	return place, nil
}

// Places cross the shared cache as JSON text. The redis backend can only
// round-trip serializable values, and the in-process backend accepts the
// same encoding, so one representation serves both.
func (g *GoogleClient) storePlace(ctx context.Context, key string, place *Place) {
	if g.cache == nil {
		return
	}
	data, err := json.Marshal(place)
	if err != nil {
		return
	}
	_ = g.cache.Set(ctx, key, string(data), detailsCacheTTL)
}

func (g *GoogleClient) cachedPlace(ctx context.Context, key string) (*Place, bool) {
	if g.cache == nil {
		return nil, false
	}
	v, ok := g.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	var p Place
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, false
	}
	return &p, true
}
