package account

import "time"

// Account represents a user of the trading/wallet platform. Balance is kept in
// the smallest currency unit and must never go negative; ID and Username are
// fixed at registration.
type Account struct {
	ID                string         // ID is the stable identifier assigned by the auth service
	Email             string         // Email is the unique email address of the account
	FullName          string         // FullName is the display name of the account holder
	Username          string         // Username is derived from the email local part, lower-cased
	PhoneNumber       string         // PhoneNumber is the contact number of the account holder
	IsAdmin           bool           // IsAdmin grants access to administrative operations
	IsVerified        bool           // IsVerified marks a completed identity verification
	Balance           int64          // Balance is the authoritative wallet balance
	ProfilePictureURL string         // ProfilePictureURL is optional
	Notifications     []Notification // Notifications are ordered newest first
}

// Notification is a per-account message recorded as a side effect of a
// balance-affecting event. It is append-only; only the Read flag is mutable.
type Notification struct {
	ID      string
	UserID  string
	Message string
	Date    time.Time
	Read    bool
}

// Session is the resolved view of an auth-service session. The core never
// sees token internals, only the stable identity a token maps to.
type Session struct {
	UserID string
	Email  string
}

// ProfileUpdate is the closed set of mutable profile fields. A nil field is
// left untouched. Balance is deliberately absent: balance writes go through
// the mutation engine only.
type ProfileUpdate struct {
	FullName          *string
	PhoneNumber       *string
	ProfilePictureURL *string
	IsVerified        *bool
}

// Empty reports whether the update carries no fields.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.PhoneNumber == nil && u.ProfilePictureURL == nil && u.IsVerified == nil
}
