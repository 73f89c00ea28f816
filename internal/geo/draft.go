package geo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

// Source tags where a draft's coordinates came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceBrowser Source = "browser"
	SourceSearch  Source = "search"
)

// MinQueryLen is the shortest locality text a search will run for.
const MinQueryLen = 3

var (
	ErrQueryTooShort = errors.New("please enter at least 3 characters to search")
	ErrDraftNotFound = errors.New("location session expired")
	ErrNoResults     = errors.New("no places found")
)

// Draft is the transient address/coordinate state for one report-form
// session. Invariant: while Source == SourceBrowser the public Lat/Lng pair
// equals BrowserLat/BrowserLng; address parsing never overwrites it.
type Draft struct {
	ID       string   `json:"id"`
	Locality string   `json:"locality"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	PinCode  string   `json:"pinCode"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Source   Source   `json:"locationSource"`

	BrowserLat *float64 `json:"browserLat"`
	BrowserLng *float64 `json:"browserLng"`

	PlaceID      string       `json:"placeId,omitempty"`
	Premise      string       `json:"premise,omitempty"`
	Route        string       `json:"route,omitempty"`
	Neighborhood string       `json:"neighborhood,omitempty"`
	Sublocality  string       `json:"sublocality,omitempty"`
	Results      []Prediction `json:"results"`
	HasSearched  bool         `json:"hasSearched"`
	ShowResults  bool         `json:"showResults"`

	// sessionToken groups this draft's prediction queries with the details
	// fetch that closes the provider billing session.
	sessionToken string
	// searchSeq is the latest issued search; stale responses are discarded
	// rather than allowed to overwrite newer results. Every transition that
	// invalidates the dropdown bumps it, so an in-flight response cannot
	// land after the state it belongs to is gone.
	searchSeq uint64

	updatedAt time.Time
}

// Ready reports whether the draft can back a report submission. The
// coordinate pair is the sole precondition; address text does not count.
func (d *Draft) Ready() bool {
	return d.Lat != nil && d.Lng != nil
}

// Workflow owns the location resolution drafts and talks to the places
// provider on their behalf.
type Workflow struct {
	client PlacesClient

	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
}

func NewWorkflow(client PlacesClient, ttl time.Duration) *Workflow {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Workflow{client: client, drafts: make(map[string]*Draft), ttl: ttl}
}

// NewDraft opens a fresh form session with its own autocomplete session
// token.
func (w *Workflow) NewDraft() *Draft {
	d := &Draft{
		ID:           uuid.NewString(),
		Source:       SourceNone,
		Results:      []Prediction{},
		sessionToken: NewSessionToken(),
		updatedAt:    time.Now(),
	}
	w.mu.Lock()
	w.drafts[d.ID] = d
	w.mu.Unlock()
	return d
}

// Get returns a copy of the draft for rendering.
func (w *Workflow) Get(id string) (*Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

// Search runs one autocomplete query against the draft's session token.
// Queries under MinQueryLen clear previous results and refuse to search.
// Each accepted search supersedes earlier ones: a response is applied only
// while its sequence number is still the latest issued, so a slow older
// response can no longer overwrite a newer one's results.
func (w *Workflow) Search(ctx context.Context, id, query string) ([]Prediction, error) {
	w.mu.Lock()
	d, ok := w.drafts[id]
	if !ok {
		w.mu.Unlock()
		return nil, ErrDraftNotFound
	}
	if len([]rune(query)) < MinQueryLen {
		// Supersede any search still in flight; its response must not
		// repopulate the dropdown the short query just emptied.
		d.searchSeq++
		d.Results = []Prediction{}
		d.ShowResults = false
		d.updatedAt = time.Now()
		w.mu.Unlock()
		return nil, ErrQueryTooShort
	}
	d.searchSeq++
	seq := d.searchSeq
	token := d.sessionToken
	d.HasSearched = true
	d.updatedAt = time.Now()
	w.mu.Unlock()

	preds, err := w.client.Predictions(ctx, query, token)

	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok = w.drafts[id]; !ok {
		return nil, ErrDraftNotFound
	}
	if seq != d.searchSeq {
		// A newer search was issued while this one was in flight.
		return d.Results, nil
	}
	if err != nil {
		// Draft unchanged; the caller surfaces the message.
		return nil, err
	}
	d.Results = preds
	d.ShowResults = true
	d.updatedAt = time.Now()
	return preds, nil
}

// Select resolves a chosen prediction through place details, closing the
// current autocomplete session. The token rotates after the fetch whether
// it succeeded or not. Coordinates and locationSource update atomically —
// unless the draft is browser-sourced, in which case only the address text
// changes and the device coordinates stay put.
func (w *Workflow) Select(ctx context.Context, id, placeID string) (*Draft, error) {
	w.mu.Lock()
	d, ok := w.drafts[id]
	if !ok {
		w.mu.Unlock()
		return nil, ErrDraftNotFound
	}
	token := d.sessionToken
	w.mu.Unlock()

	place, err := w.client.Details(ctx, placeID, token)

	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok = w.drafts[id]; !ok {
		return nil, ErrDraftNotFound
	}
	// Rotate even on error so a dead session is never reused for billing.
	d.sessionToken = NewSessionToken()
	if err != nil {
		return nil, err
	}

	addr := ParseAddress(place)
	d.applyAddress(addr, place.PlaceID)
	if d.Source != SourceBrowser {
		lat, lng := place.Location.Lat, place.Location.Lng
		d.Lat, d.Lng = &lat, &lng
		d.Source = SourceSearch
	}
	d.searchSeq++
	d.Results = []Prediction{}
	d.ShowResults = false
	d.updatedAt = time.Now()
	cp := *d
	return &cp, nil
}

// UseBrowserLocation records device coordinates and reverse-geocodes them
// into address text. The coordinate pair is written verbatim together with
// the browser source tag before the provider round trip, and nothing the
// provider returns may overwrite it. A reverse-geocode failure leaves the
// coordinates saved and reports the address lookup error.
func (w *Workflow) UseBrowserLocation(ctx context.Context, id string, coords Coordinates) (*Draft, error) {
	w.mu.Lock()
	d, ok := w.drafts[id]
	if !ok {
		w.mu.Unlock()
		return nil, ErrDraftNotFound
	}
	lat, lng := coords.Lat, coords.Lng
	d.Lat, d.Lng = &lat, &lng
	d.BrowserLat, d.BrowserLng = &lat, &lng
	d.Source = SourceBrowser
	d.searchSeq++
	d.updatedAt = time.Now()
	w.mu.Unlock()

	place, err := w.client.ReverseGeocode(ctx, coords)

	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok = w.drafts[id]; !ok {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		cp := *d
		return &cp, err
	}
	addr := ParseAddress(place)
	d.applyAddress(addr, place.PlaceID)
	d.updatedAt = time.Now()
	cp := *d
	return &cp, nil
}

// Clear resets the draft to idle: coordinates nulled, source dropped,
// search state wiped.
func (w *Workflow) Clear(id string) (*Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.Locality, d.City, d.State, d.PinCode = "", "", "", ""
	d.Premise, d.Route, d.Neighborhood, d.Sublocality = "", "", "", ""
	d.PlaceID = ""
	d.Lat, d.Lng = nil, nil
	d.BrowserLat, d.BrowserLng = nil, nil
	d.Source = SourceNone
	d.searchSeq++
	d.Results = []Prediction{}
	d.HasSearched = false
	d.ShowResults = false
	d.updatedAt = time.Now()
	cp := *d
	return &cp, nil
}

// Discard drops a draft once its report is submitted.
func (w *Workflow) Discard(id string) {
	w.mu.Lock()
	delete(w.drafts, id)
	w.mu.Unlock()
}

// Sweep removes drafts idle past the workflow TTL; the scheduler runs it
// periodically.
func (w *Workflow) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.ttl)
	w.mu.Lock()
	for id, d := range w.drafts {
		if d.updatedAt.Before(cutoff) {
			delete(w.drafts, id)
		}
	}
	w.mu.Unlock()
}

// SessionToken exposes the current autocomplete token. Test helper.
func (w *Workflow) SessionToken(id string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.drafts[id]; ok {
		return d.sessionToken
	}
	return ""
}

func (d *Draft) applyAddress(addr Address, placeID string) {
	if addr.Locality != "" {
		d.Locality = addr.Locality
	}
	if addr.City != "" {
		d.City = addr.City
	}
	if addr.State != "" {
		d.State = addr.State
	}
	d.PinCode = addr.PinCode
	d.Premise = addr.Premise
	d.Route = addr.Route
	d.Neighborhood = addr.Neighborhood
	d.Sublocality = addr.Sublocality
	if placeID != "" {
		d.PlaceID = placeID
	}
}
