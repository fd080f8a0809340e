package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Role is the closed set of account roles. Every branch on a Role must handle
// all three values explicitly so adding a role is a compile-time-checked change.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

var (
	AllRoles   = []Role{RoleAdmin, RoleInstructor, RoleStudent}
	StaffRoles = []Role{RoleAdmin, RoleInstructor}
)

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleInstructor }

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         Role      `json:"role" db:"role"`
	IsActive     *bool     `json:"is_active" db:"is_active"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) Active() bool { return u.IsActive == nil || *u.IsActive }

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }

// RegisterUser contains information needed to register a new student account.
// Public registration never accepts a role: it always yields a student.
type RegisterUser struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (ru *RegisterUser) Validate(ctx context.Context, svc Service) error {
	ru.FullName = core.CleanString(ru.FullName)
	ru.Email = core.CleanString(ru.Email, true /* lower */)

	if err := core.Validate.Struct(ru); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ru.Email)
}

// NewStaffUser contains information needed to create an instructor or admin
// account. Only admins may use it; the role defaults to instructor.
type NewStaffUser struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,staffrole"`
}

func (nu *NewStaffUser) Validate(ctx context.Context, svc Service) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleInstructor
	}

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateProfile defines what a user may change on their own account.
// Email and role are immutable here.
type UpdateProfile struct {
	FullName string `json:"full_name"`
}

func (up *UpdateProfile) Validate(origUsr User) error {
	name := core.CleanString(up.FullName)
	if name != "" {
		up.FullName = name
	} else {
		up.FullName = origUsr.FullName
	}
	return core.Validate.Struct(up)
}

type ResetUserPassword struct {
	Token       string `json:"token,omitempty" validate:"required"`
	NewPassword string `json:"new_password,omitempty" validate:"required,min=8"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }
