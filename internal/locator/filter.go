package locator

import (
	"strings"
	"unicode/utf8"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// FilterState is what the user has asked the locator for.
// A sub-region only counts together with its region, and near-me
// coordinates replace any text or region search.
type FilterState struct {
	Query      string       `json:"query,omitempty"`
	Region     string       `json:"region,omitempty"`
	Subregion  string       `json:"subregion,omitempty"`
	PostalCode string       `json:"postal_code,omitempty"`
	NearMe     *Coordinates `json:"near_me,omitempty"`
}

// WithQuery sets the free text. Typing leaves near-me mode.
func (f FilterState) WithQuery(q string) FilterState {
	f.Query = q
	f.NearMe = nil
	return f
}

// WithRegion selects a region, clearing the sub-region and postal code.
func (f FilterState) WithRegion(region string) FilterState {
	f.Region = strings.TrimSpace(region)
	f.Subregion = ""
	f.PostalCode = ""
	f.NearMe = nil
	return f
}

// WithSubregion selects a sub-region; it is ignored without a region.
func (f FilterState) WithSubregion(subregion string) FilterState {
	if f.Region == "" {
		return f
	}
	f.Subregion = strings.TrimSpace(subregion)
	f.PostalCode = ""
	return f
}

// WithPostalCode refines the current region search.
func (f FilterState) WithPostalCode(code string) FilterState {
	f.PostalCode = strings.TrimSpace(code)
	return f
}

// WithNearMe switches to a proximity search around c.
func (f FilterState) WithNearMe(c Coordinates) FilterState {
	return FilterState{NearMe: &c}
}

// Triggers reports whether this state warrants a gateway call.
func (f FilterState) Triggers(minQueryLength int) bool {
	if f.NearMe != nil || f.Region != "" {
		return true
	}
	return utf8.RuneCountInString(strings.TrimSpace(f.Query)) >= minQueryLength
}

// Equal compares two filter states by value.
func (f FilterState) Equal(o FilterState) bool {
	if f.Query != o.Query || f.Region != o.Region || f.Subregion != o.Subregion || f.PostalCode != o.PostalCode {
		return false
	}
	if f.NearMe == nil || o.NearMe == nil {
		return f.NearMe == nil && o.NearMe == nil
	}
	return *f.NearMe == *o.NearMe
}
