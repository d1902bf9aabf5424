package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrFieldNotUpdatable  = errors.New("field cannot be updated")
)

// ProfileUpdateMessage is returned to clients whose profile update names a
// field outside the updatable set
const ProfileUpdateMessage = "Only age, height, weight, gender, and step_goal can be updated."

// FieldErrors maps a JSON field name to the problems found with its value
type FieldErrors map[string][]string

// Add records a message against field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// orNil returns nil when no field errors were collected
func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
