// Package models defines the data models persisted in the database and the
// plain result types handed to the transport collaborator.
package models

import "time"

// Account is an owner of archived records. Created on first contact and
// updated on subsequent contact; never deleted.
type Account struct {
	// ID is the messaging-platform account identifier.
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}
