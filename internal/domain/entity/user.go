package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// BirthDate carries a calendar date (UTC midnight); the time portion is
// never meaningful.
//
// IsDeleted marks a soft-deleted row: the record stays in storage but is
// invisible to every normal read path. There is no transition back.
type User struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Address     string
	PhoneNumber string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
