package models

// User is the profile cached alongside the auth token.
type User struct {
	ID             ID     `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	LastLoggedInAt string `json:"lastLoggedInAt,omitempty"`
}

// DisplayName returns "First Last", falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Registration is the payload of the create-user call.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Credentials is the payload of the verify-user (login) call.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the result of a successful login.
type LoginResult struct {
	AuthToken string `json:"auth_token"`
	User      User   `json:"user"`
}
