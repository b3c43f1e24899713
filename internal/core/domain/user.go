package domain

import "time"

// User models an identity of the ClearCut product. Accounts are passwordless:
// the email is exchanged for a bearer token, and the premium flag is the only
// entitlement distinction.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	IsPremium    bool       `json:"is_premium"`
	IsAdmin      bool       `json:"is_admin"`
	PremiumSince *time.Time `json:"premium_since,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Session pairs the cached identity with the bearer token that authenticates
// every outbound call. Both live and die together: created on login, cleared
// on logout or on an unrecoverable token failure.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
