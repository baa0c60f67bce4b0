package models

import "time"

// User is a player account as seen by the arcade. Accounts are created and
// authenticated elsewhere; this subsystem only reads them.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	Email       string
	CreatedAt   time.Time
}

// Cosmetic is a decoration a player can equip (frame, title, badge).
type Cosmetic struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	Slot string `json:"slot"`
}

// Profile is the read-only view of a player used to hydrate leaderboards
type Profile struct {
	UserID      int64
	DisplayName string
	Email       string
	Cosmetics   []Cosmetic
}
