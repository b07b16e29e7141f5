// Package hospitals finds medical facilities near a coordinate using the
// OpenStreetMap Overpass API.
package hospitals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/careloop/clinic-platform/pkg/logging"
)

const (
	defaultEndpoint = "https://overpass-api.de/api/interpreter"
	defaultTimeout  = 15 * time.Second

	// DefaultRadiusMeters matches the radius used on the map screen.
	DefaultRadiusMeters = 5000
	maxRadiusMeters     = 50000
)

// ErrUpstream is returned when the Overpass API misbehaves.
var ErrUpstream = errors.New("hospital lookup temporarily unavailable")

// Hospital is one facility returned by a nearby search.
type Hospital struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Address    string  `json:"address,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Website    string  `json:"website,omitempty"`
	Emergency  bool    `json:"emergency"`
	DistanceKm float64 `json:"distance_km"`
}

// Client queries the Overpass API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the Overpass endpoint, mainly for tests and mirrors.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout overrides the outbound request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates an Overpass client.
func NewClient(logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// overpassResponse mirrors the JSON shape of `out center`.
type overpassResponse struct {
	Elements []struct {
		Type   string  `json:"type"`
		ID     int64   `json:"id"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearby returns hospitals within radiusMeters of the coordinate, sorted by
// distance from nearest to farthest.
func (c *Client) Nearby(ctx context.Context, lat, lon float64, radiusMeters int) ([]Hospital, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	if radiusMeters > maxRadiusMeters {
		radiusMeters = maxRadiusMeters
	}

	query := fmt.Sprintf(`[out:json][timeout:10];
(
  node["amenity"="hospital"](around:%d,%f,%f);
  way["amenity"="hospital"](around:%d,%f,%f);
);
out center;`, radiusMeters, lat, lon, radiusMeters, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("hospitals: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("overpass request failed", "error", err)
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("overpass returned non-200", "status", resp.StatusCode)
		return nil, ErrUpstream
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error("overpass payload malformed", "error", err)
		return nil, ErrUpstream
	}

	hospitals := make([]Hospital, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		hLat, hLon := el.Lat, el.Lon
		if el.Center != nil {
			hLat, hLon = el.Center.Lat, el.Center.Lon
		}
		if hLat == 0 && hLon == 0 {
			continue
		}
		h := Hospital{
			ID:        el.Type + "/" + strconv.FormatInt(el.ID, 10),
			Name:      el.Tags["name"],
			Lat:       hLat,
			Lon:       hLon,
			Address:   buildAddress(el.Tags),
			Phone:     firstTag(el.Tags, "phone", "contact:phone"),
			Website:   firstTag(el.Tags, "website", "contact:website"),
			Emergency: el.Tags["emergency"] == "yes",
		}
		if h.Name == "" {
			h.Name = "Unnamed hospital"
		}
		h.DistanceKm = haversineKm(lat, lon, hLat, hLon)
		hospitals = append(hospitals, h)
	}

	sort.Slice(hospitals, func(i, j int) bool {
		return hospitals[i].DistanceKm < hospitals[j].DistanceKm
	})
	return hospitals, nil
}

func buildAddress(tags map[string]string) string {
	var parts []string
	if street := tags["addr:street"]; street != "" {
		if num := tags["addr:housenumber"]; num != "" {
			parts = append(parts, num+" "+street)
		} else {
			parts = append(parts, street)
		}
	}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
