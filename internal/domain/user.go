package domain

import "time"

// Profile types accepted at registration. The set is closed; anything else
// is rejected as invalid input.
const (
	ProfileStudent    = "aluno"
	ProfileInstructor = "instrutor"
	ProfileAdmin      = "admin"
)

// ValidProfileType reports whether the profile type belongs to the closed
// set of roles.
func ValidProfileType(t string) bool {
	switch t {
	case ProfileStudent, ProfileInstructor, ProfileAdmin:
		return true
	}
	return false
}

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           string
	Username     string
	Email        string
	CPF          string
	Phone        string
	ProfileType  string
	PasswordHash string
	CreatedAt    time.Time
}

// UserSummary is the representation of a user returned over HTTP. It carries
// no credential material.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	CPF         string `json:"cpf"`
	Phone       string `json:"telefone,omitempty"`
	ProfileType string `json:"tipo_perfil"`
	CreatedAt   string `json:"created_at"`
}

// Summary builds the external view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CPF:         u.CPF,
		Phone:       u.Phone,
		ProfileType: u.ProfileType,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
