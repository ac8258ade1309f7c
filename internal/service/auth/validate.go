package auth

import (
	"net/mail"
	"sort"
	"strings"

	"github.com/oficina/auth-service/internal/domain"
)

const minPasswordLength = 6

// RegisterInput carries the registration payload. Field names follow the
// public API contract.
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	CPF         string `json:"cpf"`
	Phone       string `json:"telefone"`
	ProfileType string `json:"tipo_perfil"`
	Password    string `json:"password"`
}

// FieldErrors maps field names to validation messages and is reported with
// full detail at the registration boundary.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid input: " + strings.Join(fields, ", ")
}

// validate normalizes the input and reports every invalid field at once.
func (in RegisterInput) validate() (RegisterInput, error) {
	out := RegisterInput{
		Username:    strings.TrimSpace(in.Username),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		CPF:         normalizeCPF(in.CPF),
		Phone:       strings.TrimSpace(in.Phone),
		ProfileType: strings.TrimSpace(in.ProfileType),
		Password:    in.Password,
	}

	errs := make(FieldErrors)
	if out.Username == "" {
		errs["username"] = "username is required"
	}
	if out.Email == "" {
		errs["email"] = "email is required"
	} else if !validEmail(out.Email) {
		errs["email"] = "email is malformed"
	}
	if out.CPF == "" {
		errs["cpf"] = "cpf is required"
	} else if !validCPF(out.CPF) {
		errs["cpf"] = "cpf must contain 11 digits"
	}
	if out.ProfileType == "" {
		errs["tipo_perfil"] = "tipo_perfil is required"
	} else if !domain.ValidProfileType(out.ProfileType) {
		errs["tipo_perfil"] = "tipo_perfil must be one of: aluno, instrutor, admin"
	}
	if len(out.Password) < minPasswordLength {
		errs["password"] = "password must have at least 6 characters"
	}
	if len(errs) > 0 {
		return RegisterInput{}, errs
	}
	return out, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	// Reject the name-addr form; only a bare address is acceptable.
	return err == nil && addr.Address == email
}

// normalizeCPF strips the conventional xxx.xxx.xxx-xx punctuation.
func normalizeCPF(cpf string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(cpf))
}

func validCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
