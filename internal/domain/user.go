package domain

import "time"

// DefaultProfilePicture is assigned to accounts created without an avatar.
const DefaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

// User is the domain model for platform accounts.
//
// RefreshToken holds the single live refresh token for the account, or nil
// when no session is active. It is overwritten on every signin and refresh
// (rotation); a presented refresh token that does not equal the stored value
// is rejected no matter how valid its signature is.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	ProfilePicture string
	IsAdmin        bool
	IsWriter       bool
	RefreshToken   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
