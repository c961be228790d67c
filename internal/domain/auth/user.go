package auth

// User is the identity returned by the login endpoint and persisted under
// the hrmsUser key.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// UserContext is what the demo server attaches to an authenticated request.
type UserContext struct {
	UserID  string
	Email   string
	Role    Role
	TokenID string
}
