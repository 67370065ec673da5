package models

import "time"

// Player represents a student who plays vocabulary games
type Player struct {
	ID           int64
	Username     string
	PINHash      string
	TeacherEmail string
	CreatedAt    time.Time
}
