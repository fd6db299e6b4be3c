// Package client holds the client record entity and the validation and
// parsing logic that turns raw spreadsheet cells into persisted records.
// This package has no storage or UI dependencies and can be used by any
// frontend.
package client

import "time"

// Client is a single client record, keyed by its card code.
//
// CardCode is the natural key: a non-empty digit string that identifies
// the record everywhere (store lookups, grid edits, import reconciliation).
// It never changes except through an explicit rename.
type Client struct {
	CardCode    string     `json:"cardCode"`
	LastName    string     `json:"lastName,omitempty"`
	FirstName   string     `json:"firstName,omitempty"`
	Patronymic  string     `json:"patronymic,omitempty"`
	PhoneMobile string     `json:"phoneMobile"`
	Email       string     `json:"email,omitempty"`
	GenderID    string     `json:"genderId"`
	Birthday    time.Time  `json:"birthday"`
	City        string     `json:"city,omitempty"`
	PostalCode  *int       `json:"postalCode,omitempty"`
	Bonus       *int       `json:"bonus,omitempty"`
	Turnover    *int       `json:"turnover,omitempty"`
}

// CopyFieldsFrom copies every field except the card code from src.
// Used by update paths where the key is fixed and the rest of the record
// is replaced wholesale.
func (c *Client) CopyFieldsFrom(src *Client) {
	c.LastName = src.LastName
	c.FirstName = src.FirstName
	c.Patronymic = src.Patronymic
	c.PhoneMobile = src.PhoneMobile
	c.Email = src.Email
	c.GenderID = src.GenderID
	c.Birthday = src.Birthday
	c.City = src.City
	c.PostalCode = src.PostalCode
	c.Bonus = src.Bonus
	c.Turnover = src.Turnover
}

// Clone returns a deep copy of the record. The optional numeric fields are
// re-allocated so the copy cannot alias the original.
func (c *Client) Clone() *Client {
	out := *c
	out.PostalCode = cloneInt(c.PostalCode)
	out.Bonus = cloneInt(c.Bonus)
	out.Turnover = cloneInt(c.Turnover)
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
