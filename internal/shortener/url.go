package shortener

import (
	"encoding/json"
	"time"
)

// URL is the binding between a long URL and its short code.
type URL struct {
	Long           string    `json:"long"`
	Short          string    `json:"short"`
	Alias          *string   `json:"alias"`
	ExpirationDate *Date     `json:"expirationDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UserID         string    `json:"userId"`
}

// Expired reports whether the binding expired before today (UTC).
// A URL without an expiration date never expires.
func (u *URL) Expired() bool {
	return u.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the binding expired before the date of now.
func (u *URL) ExpiredAt(now time.Time) bool {
	if u.ExpirationDate == nil {
		return false
	}

	return u.ExpirationDate.Before(DateOf(now))
}

// AliasValue returns the alias or an empty string.
func (u *URL) AliasValue() string {
	if u.Alias == nil {
		return ""
	}

	return *u.Alias
}

// Clone returns a deep copy.
func (u *URL) Clone() *URL {
	c := *u

	if u.Alias != nil {
		alias := *u.Alias
		c.Alias = &alias
	}

	if u.ExpirationDate != nil {
		date := *u.ExpirationDate
		c.ExpirationDate = &date
	}

	return &c
}

// Marshal encodes the URL in its wire form.
func (u *URL) Marshal() ([]byte, error) {
	return json.Marshal(u)
}

// UnmarshalURL decodes a URL from its wire form.
func UnmarshalURL(data []byte) (*URL, error) {
	var u URL
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
