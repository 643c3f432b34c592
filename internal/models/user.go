package models

import "time"

// User mirrors the auth provider's "user" table. Field names in JSON match
// the front-end contract (camelCase, same keys the auth provider emits).
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	Image         *string    `json:"image,omitempty"`
}
