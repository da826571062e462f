// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Users are never registered directly; a row is created as a side effect of
// the first successful sign-in through any identity provider. The email is
// the natural external key: both Google and Facebook assert the account's
// email, and whichever provider signs in first creates the row.
//
// We still generate our own internal string ID (xid) rather than keying on
// the email, so our primary keys aren't tied to a value the user can change
// at the provider.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`    // display name from the provider profile
	Email     string    `json:"email"`   // UNIQUE in the DB; serializes first-sign-in creation
	Picture   string    `json:"picture"` // profile picture URL (may be empty)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
