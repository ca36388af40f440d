package domain

// AdminProfile is the authenticated administrator as GET /auth/ reports it.
type AdminProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// AdminSession pairs the bearer token with the profile it authenticates.
// It exists from a successful login (or token restore) until logout or a
// failed re-validation.
type AdminSession struct {
	Token string
	User  AdminProfile
}
