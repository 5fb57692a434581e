package domain

import "time"

// Link maps a short code to its target URL. Clicks and LastClickedAt are owned
// by the store and change only through redirect resolution.
type Link struct {
	ID            int64
	Code          string
	TargetURL     string
	Clicks        int64
	LastClickedAt *time.Time
	CreatedAt     time.Time
}

// NewLink is the write model accepted by stores on creation.
type NewLink struct {
	Code      string
	TargetURL string
	CreatedAt time.Time
}
