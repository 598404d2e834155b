package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Fixed reference roles. Their identifiers are stable across environments so
// externally provisioned data can reference them directly.
const (
	RoleAdminName    = "Admin"
	RoleOperatorName = "Operador"
)

var (
	RoleAdminID    = uuid.MustParse("8d2a9f0e-5b7c-4c1e-9a3d-1f6e2b4c7a01")
	RoleOperatorID = uuid.MustParse("8d2a9f0e-5b7c-4c1e-9a3d-1f6e2b4c7a02")
)

// ReferenceRoles returns the roles every environment must contain.
func ReferenceRoles() []Role {
	return []Role{
		{ID: RoleAdminID, Name: RoleAdminName},
		{ID: RoleOperatorID, Name: RoleOperatorName},
	}
}

// Role groups users by permission level.
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name" validate:"required,max=50"`
}

func NewRole(name string) (*Role, error) {
	r := &Role{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if err := validateEntity("role", r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Role) Rename(name string) error {
	next := *r
	next.Name = strings.TrimSpace(name)
	if err := validateEntity("role", &next); err != nil {
		return err
	}
	*r = next
	return nil
}

// User is an operator or customer account. Email addresses are stored lower-cased.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email" validate:"required,email,max=255"`
	PasswordHash string    `json:"-" validate:"required,max=255"`
	RoleID       uuid.UUID `json:"role_id"`
	IsActive     bool      `json:"is_active"`
	Auditable
}

func NewUser(email, passwordHash string, roleID uuid.UUID) (*User, error) {
	if err := requireID("user.role_id", roleID); err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		RoleID:       roleID,
		IsActive:     true,
		Auditable:    newAuditable(),
	}
	if err := validateEntity("user", u); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) ChangeEmail(email string) error {
	return u.apply(func(next *User) error {
		next.Email = normalizeEmail(email)
		return nil
	})
}

func (u *User) ChangePassword(passwordHash string) error {
	return u.apply(func(next *User) error {
		next.PasswordHash = passwordHash
		return nil
	})
}

func (u *User) AssignRole(roleID uuid.UUID) error {
	return u.apply(func(next *User) error {
		next.RoleID = roleID
		return requireID("user.role_id", roleID)
	})
}

func (u *User) Activate() {
	u.IsActive = true
	u.touch()
}

func (u *User) Deactivate() {
	u.IsActive = false
	u.touch()
}

// apply validates a modified copy before committing it, so a rejected change
// leaves the user untouched.
func (u *User) apply(change func(next *User) error) error {
	next := *u
	if err := change(&next); err != nil {
		return err
	}
	if err := validateEntity("user", &next); err != nil {
		return err
	}
	next.touch()
	*u = next
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
