package models

import "taskdesk/internal/authz"

type Account struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"-"` // stored as given, compared verbatim
	Role     authz.Role `json:"role"`
}

// Session returns the acting identity for an authenticated account.
func (a Account) Session() authz.Session {
	return authz.Session{Email: a.Email, Role: a.Role}
}

// AccountSummary is a row of the administrative account list.
type AccountSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
