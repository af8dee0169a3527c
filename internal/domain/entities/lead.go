package entities

import "time"

// LeadStatus tracks a lead through the sales pipeline
type LeadStatus string

const (
	LeadStatusNew LeadStatus = "new"
)

// Lead is a contact request captured by the landing page
type Lead struct {
	ID              string     `json:"id" db:"id"`
	FullName        string     `json:"full_name" db:"full_name"`
	Phone           string     `json:"phone" db:"phone"`
	Email           string     `json:"email,omitempty" db:"email"`
	ZipCode         string     `json:"zip_code,omitempty" db:"zip_code"`
	BirthDates      []string   `json:"birth_dates" db:"-"`
	Status          LeadStatus `json:"status" db:"status"`
	PrivacyAccepted bool       `json:"privacy_accepted" db:"privacy_accepted"`
	UserAgent       string     `json:"-" db:"user_agent"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// LeadDelivery summarizes how a submitted lead was handled
type LeadDelivery struct {
	LeadID    string          `json:"lead_id,omitempty"`
	Persisted bool            `json:"persisted"`
	Channels  map[string]bool `json:"channels"`
}

// Delivered reports whether the lead reached storage or at least one channel
func (d LeadDelivery) Delivered() bool {
	if d.Persisted {
		return true
	}
	for _, ok := range d.Channels {
		if ok {
			return true
		}
	}
	return false
}

// LeadEvent is published on the lead event bus after a submission
type LeadEvent struct {
	ID        string       `json:"id"`
	Lead      Lead         `json:"lead"`
	Delivery  LeadDelivery `json:"delivery"`
	Timestamp time.Time    `json:"timestamp"`
}
