package models

import "time"

// Subscriber is one stored launch-list address.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Origin    string    `json:"origin,omitempty"`
}
