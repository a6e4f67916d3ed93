package auth

// CredentialsRequest is the JSON body for POST /auth/register and
// POST /auth/login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the JSON response for a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginResponse is the JSON response for a successful login. Token is the
// bearer token for the calculator endpoints and /auth/logout.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}
