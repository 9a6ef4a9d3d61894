package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleAll   = "all"
)

// User is a users record as shown to admins. Raw keeps every stored field.
type User struct {
	UID          string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name"`
	FirstName    string         `json:"first_name,omitempty"`
	LastName     string         `json:"last_name,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Type         string         `json:"type,omitempty"`
	Role         string         `json:"role"`
	IsAdmin      bool           `json:"is_admin"`
	Approved     bool           `json:"approved"`
	Address      string         `json:"address"`
	TextUpdates  bool           `json:"text_updates"`
	Plan         map[string]any `json:"plan,omitempty"`
	CreatedAt    *time.Time     `json:"created_at"`
	CreatedLabel string         `json:"created_label"`
	UpdatedAt    *time.Time     `json:"updated_at"`
	Raw          map[string]any `json:"-"`
}

// Filter narrows the user list. Role is all, admin or user.
type Filter struct {
	Search string
	Role   string
}
