package models

import "fmt"

// Role is the enumerated account role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAppointee Role = "appointee"
)

// ParseRole validates a role name coming from a request.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleAppointee:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}
