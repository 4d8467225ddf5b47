package models

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"

	DefaultRole = RoleUser
)

var ErrInvalidRole = errors.New("invalid role")

var allowedRoles = map[Role]struct{}{
	RoleUser:   {},
	RoleAdmin:  {},
	RoleSeller: {},
}

// ParseRole accepts exactly one spelling per role; surrounding whitespace is ignored.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if _, ok := allowedRoles[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}
