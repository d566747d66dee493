package shopper

import (
	"strings"
	"time"
)

// Shopper is a registered customer. Contact and address fields beyond the
// name are optional; Cookie carries the legacy storefront cookie id.
type Shopper struct {
	ID            int64      `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Address       *string    `json:"address,omitempty"`
	City          *string    `json:"city,omitempty"`
	State         *string    `json:"state,omitempty"`
	ZipCode       *string    `json:"zip_code,omitempty"`
	Province      *string    `json:"province,omitempty"`
	Country       *string    `json:"country,omitempty"`
	Cookie        *int       `json:"cookie,omitempty"`
	DateCreated   time.Time  `json:"date_created"`
	DateLastVisit *time.Time `json:"date_last_visit,omitempty"`
}

func (s *Shopper) FullName() string {
	return s.FirstName + " " + s.LastName
}

// FullAddress joins the populated address parts, matching the storefront's
// "street, city, state zip, country" rendering.
func (s *Shopper) FullAddress() string {
	var parts []string
	for _, p := range []*string{s.Address, s.City, s.State, s.Province} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	out := strings.Join(parts, ", ")
	if s.ZipCode != nil && *s.ZipCode != "" {
		out += " " + *s.ZipCode
	}
	if s.Country != nil && *s.Country != "" {
		if out != "" {
			out += ", "
		}
		out += *s.Country
	}
	return out
}

// InactiveSince reports whether the shopper has not visited since the cutoff.
// A shopper with no recorded visit counts as inactive.
func (s *Shopper) InactiveSince(cutoff time.Time) bool {
	if s.DateLastVisit == nil {
		return true
	}
	return s.DateLastVisit.Before(cutoff)
}
