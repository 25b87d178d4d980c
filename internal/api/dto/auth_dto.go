package dto

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest payload for password login.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSigninRequest carries the client-verified Google identity assertion.
type GoogleSigninRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	GooglePhotoURL string `json:"googlePhotoUrl"`
}

// RefreshRequest payload; the token may also arrive via cookie.
type RefreshRequest struct {
	Token string `json:"token"`
}

// RefreshResponse returns the rotated refresh token.
type RefreshResponse struct {
	RefreshToken string `json:"refreshToken"`
}
