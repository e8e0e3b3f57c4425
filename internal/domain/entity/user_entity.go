package entity

import "time"

// User is a registered clinician.
// Email is unique and compared exactly as stored.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}
