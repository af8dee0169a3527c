package entities

// DirectoryRow is one practitioner-at-location record from medical_directory_raw.
// Rows sharing ServicePointID describe the same physical clinic.
type DirectoryRow struct {
	MedicalDirectoryID string   `json:"medical_directory_id" db:"medical_directory_id"`
	ServicePointID     string   `json:"sp_id" db:"sp_id"`
	ServicePointName   string   `json:"sp_name" db:"sp_name"`
	PractitionerName   string   `json:"professional_name" db:"professional_name"`
	Specialty          string   `json:"speciality" db:"speciality"`
	Address            string   `json:"address" db:"address"`
	PostalCode         string   `json:"postal_code" db:"postal_code"`
	Town               string   `json:"town" db:"town"`
	Province           string   `json:"province" db:"province"`
	Latitude           *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude          *float64 `json:"longitude,omitempty" db:"longitude"`
	Phone              string   `json:"sp_customer_telephone_1" db:"sp_customer_telephone_1"`
	Rating             string   `json:"sp_average_rating" db:"sp_average_rating"`
	CombinedName       string   `json:"combined_name" db:"combined_name"`
	Nature             string   `json:"nature" db:"nature"`
}

// HasCoordinates reports whether the row carries a usable WGS84 position.
func (r DirectoryRow) HasCoordinates() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	return ValidCoordinates(*r.Latitude, *r.Longitude)
}

// ValidCoordinates reports whether lat/lon lie within WGS84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ServicePoint is an aggregate clinic returned by a directory search.
type ServicePoint struct {
	ID               string   `json:"sp_id" db:"sp_id"`
	Name             string   `json:"sp_name" db:"sp_name"`
	Address          string   `json:"address" db:"address"`
	PostalCode       string   `json:"postal_code" db:"postal_code"`
	Town             string   `json:"town" db:"town"`
	Province         string   `json:"province" db:"province"`
	Latitude         float64  `json:"latitude" db:"latitude"`
	Longitude        float64  `json:"longitude" db:"longitude"`
	Rating           float64  `json:"rating" db:"rating"`
	NumProfessionals int      `json:"num_professionals" db:"num_professionals"`
	DistanceMeters   float64  `json:"dist_meters" db:"dist_meters"`
	Specialties      []string `json:"specialties" db:"-"`
}

// GroupedPractitioner is a deduplicated person within one service point.
type GroupedPractitioner struct {
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
}

// ServicePointDetail is what the detail view shows for a selected clinic.
type ServicePointDetail struct {
	ServicePointID string                `json:"sp_id"`
	Phone          string                `json:"phone"`
	PhoneDisplay   string                `json:"phone_display"`
	Practitioners  []GroupedPractitioner `json:"practitioners"`
}

// ServicePointQuery mirrors the get_service_points gateway parameters.
// Only near-me queries rank nearest first; unbounded searches rank by name.
type ServicePointQuery struct {
	Latitude          float64 `json:"lat"`
	Longitude         float64 `json:"long"`
	Limit             int     `json:"limit"`
	MaxDistanceMeters float64 `json:"max_dist_meters"`
	Text              string  `json:"search_text,omitempty"`
	Region            string  `json:"province,omitempty"`
	Subregion         string  `json:"town,omitempty"`
	PostalCode        string  `json:"postal_code,omitempty"`
	OrderByDistance   bool    `json:"order_by_distance,omitempty"`
}
