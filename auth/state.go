package auth

import "github.com/smartsales365/admin-console/users"

// State is the process-wide answer to "who is logged in".
type State struct {
	User            *users.UserProfile
	IsAuthenticated bool

	// Loading is true only while the startup check runs.
	Loading bool
}

// initialState is the state before the startup check has run.
func initialState() State {
	return State{Loading: true}
}

// Credentials are what the login form submits.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult reports the outcome of Login. Failures carry a message fit
// for showing next to the login form.
type LoginResult struct {
	Success bool
	User    *users.UserProfile
	Error   string
}

// DefaultLoginError is shown when the backend gives no reason.
const DefaultLoginError = "Credenciales incorrectas"

type loginResponse struct {
	Access  string             `json:"access"`
	Refresh string             `json:"refresh"`
	User    *users.UserProfile `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
