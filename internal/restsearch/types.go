package restsearch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Coordinates is the point a search is centred on. Values are passed to the
// upstream API as given.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is one restaurant record returned by the search API. Every field is
// optional upstream; absent fields are empty strings.
type Venue struct {
	Name     string
	Walk     string
	Holiday  string
	OpenTime string
	ImageURL string
	URL      string
}

// searchResponse mirrors the relevant parts of the RestSearch v3 payload.
type searchResponse struct {
	Error         json.RawMessage `json:"error"`
	Message       *flexString     `json:"message"`
	TotalHitCount *int            `json:"total_hit_count"`
	Rest          []restRecord    `json:"rest"`
}

type restRecord struct {
	Name     flexString `json:"name"`
	Access   access     `json:"access"`
	Holiday  flexString `json:"holiday"`
	OpenTime flexString `json:"opentime"`
	ImageURL imageURLs  `json:"image_url"`
	URL      flexString `json:"url"`
}

type access struct {
	Walk flexString `json:"walk"`
}

type imageURLs struct {
	ShopImage1 flexString `json:"shop_image1"`
}

func (r restRecord) toVenue() Venue {
	return Venue{
		Name:     string(r.Name),
		Walk:     string(r.Access.Walk),
		Holiday:  string(r.Holiday),
		OpenTime: string(r.OpenTime),
		ImageURL: string(r.ImageURL.ShopImage1),
		URL:      string(r.URL),
	}
}

// flexString decodes the loosely typed scalar fields of the search API.
// Strings are taken as-is, numbers keep their literal text, and null or
// empty objects/arrays (the API's way of saying "no value") become "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*f = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{', '[', 'n':
		*f = ""
	default:
		*f = flexString(strings.TrimSpace(string(trimmed)))
	}
	return nil
}
