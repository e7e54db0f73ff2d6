package models

// Session is the identity and credential held by the running client.
type Session struct {
	Token    string `json:"-"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Authenticated reports whether the session carries a token. No other field
// implies authentication.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest is the payload for POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and signup.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
