package core

import "strings"

// Member is one registered contributor or beneficiary. Name doubles as the
// directory key; ID is a generated surrogate stored alongside the name on
// every transaction so a later rename does not orphan history.
type Member struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ShortID string `json:"short_id,omitempty"`
	Group   string `json:"group"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	Since   string `json:"since,omitempty"`
}

// Validate checks the registration invariants. Email became required in the
// final form revision and that behavior is kept.
func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(m.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
