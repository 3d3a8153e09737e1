// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// PresenceStatus describes a user's current availability in the chat UI.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
	PresenceAway    PresenceStatus = "away"
)

// Valid reports whether the status is one of the known presence values.
func (s PresenceStatus) Valid() bool {
	switch s {
	case PresenceOnline, PresenceOffline, PresenceAway:
		return true
	}

	return false
}

// User is the core identity record of the system. It owns both the public
// profile fields consumed by the chat surface and the credential material
// (password hash, pending OTP hash, verification flag) owned by the account
// service.
type User struct {
	ID           string         // Hex document id assigned by the store.
	Username     string         // Globally unique handle, used for login and friend search.
	Email        string         // Globally unique contact address, proven by verification.
	PasswordHash string         // One-way bcrypt digest; never empty after creation.
	OTPHash      string         // Bcrypt digest of the pending OTP; empty when none is pending.
	IsVerified   bool           // Flips true exactly once, on successful email verification.
	Avatar       string         // Avatar URL; defaults to the configured placeholder.
	Status       PresenceStatus // Current presence; defaults to offline.
	LastSeen     time.Time      // Last time the user was online.

	// Friend graph, kept as document references. Populated by the (excluded)
	// messaging layer; the account service only initializes them empty.
	Friends        []string
	FriendRequests []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingOTP reports whether a one-time passcode is awaiting a password reset.
func (u *User) HasPendingOTP() bool {
	return u.OTPHash != ""
}
