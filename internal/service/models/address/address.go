// Package address normalizes the shipping address shapes stored on orders.
package address

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty        = errors.New("shipping address is empty")
	ErrMissingField = errors.New("shipping address is missing a required field")
)

// Address is a shipping address with canonical field names.
type Address struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
}

// raw accepts both the canonical and the legacy checkout field names.
type raw struct {
	FullName     string `json:"fullName"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	Street       string `json:"street"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   text   `json:"postalCode"`
	ZipCode      text   `json:"zipCode"`
	Country      string `json:"country"`
	Phone        text   `json:"phone"`
}

// text is a field older checkouts stored as a JSON number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = text(n.String())

	return nil
}

// Parse decodes an address stored either as a JSON object or as a JSON
// string holding a serialized object, and normalizes field aliases.
func Parse(data []byte) (Address, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return Address{}, ErrEmpty
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Address{}, fmt.Errorf("failed to decode serialized address: %w", err)
		}

		return Parse([]byte(s))
	}

	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return Address{}, fmt.Errorf("failed to decode address: %w", err)
	}

	return r.normalize()
}

func (r raw) normalize() (Address, error) {
	a := Address{
		FullName:     strings.TrimSpace(r.FullName),
		AddressLine1: strings.TrimSpace(r.AddressLine1),
		AddressLine2: strings.TrimSpace(r.AddressLine2),
		City:         strings.TrimSpace(r.City),
		State:        strings.TrimSpace(r.State),
		PostalCode:   strings.TrimSpace(string(r.PostalCode)),
		Country:      strings.TrimSpace(r.Country),
		Phone:        strings.TrimSpace(string(r.Phone)),
	}
	if a.FullName == "" {
		a.FullName = strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	}
	if a.AddressLine1 == "" {
		a.AddressLine1 = strings.TrimSpace(r.Street)
	}
	if a.PostalCode == "" {
		a.PostalCode = strings.TrimSpace(string(r.ZipCode))
	}

	required := []struct{ field, value string }{
		{"name", a.FullName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"country", a.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return Address{}, fmt.Errorf("%w: %s", ErrMissingField, r.field)
		}
	}

	return a, nil
}

// Locality renders "City, State Postal", skipping empty parts.
func (a Address) Locality() string {
	out := a.City
	if a.State != "" {
		out += ", " + a.State
	}
	if a.PostalCode != "" {
		if a.State == "" {
			out += ","
		}
		out += " " + a.PostalCode
	}

	return out
}
