package auth

import "strings"

// TokenResponse is the OAuth2 token response returned by the login and
// refresh endpoints. All fields are required.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (t TokenResponse) validate(op string) error {
	var invalid []string
	if t.AccessToken == "" {
		invalid = append(invalid, "access_token")
	}
	if t.RefreshToken == "" {
		invalid = append(invalid, "refresh_token")
	}
	if t.ExpiresIn <= 0 {
		invalid = append(invalid, "expires_in")
	}
	if t.TokenType == "" {
		invalid = append(invalid, "token_type")
	}
	if len(invalid) > 0 {
		return &SchemaError{Op: op, Fields: invalid}
	}
	return nil
}

// RegistrationRequest is the payload for creating a new user account.
type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegistrationRequest) validate() error {
	var invalid []string
	if len(r.Username) < 3 {
		invalid = append(invalid, "username")
	}
	if !strings.Contains(r.Email, "@") {
		invalid = append(invalid, "email")
	}
	if len(r.Password) < 8 {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return &SchemaError{Op: "register", Fields: invalid}
	}
	return nil
}

// RegistrationResponse is returned by the registration endpoint.
type RegistrationResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

func (r RegistrationResponse) validate() error {
	var invalid []string
	if r.UserID == "" {
		invalid = append(invalid, "user_id")
	}
	if r.Username == "" {
		invalid = append(invalid, "username")
	}
	if len(invalid) > 0 {
		return &SchemaError{Op: "register", Fields: invalid}
	}
	return nil
}
