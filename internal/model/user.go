package model

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLecturer Role = "lecturer"
	RoleStudent  Role = "student"
	RoleOther    Role = "other"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLecturer, RoleStudent, RoleOther:
		return true
	}
	return false
}

// NeedsDepartment reports whether users of this role must belong to a department.
func (r Role) NeedsDepartment() bool {
	return r == RoleStudent || r == RoleLecturer
}

type OnboardingStatus string

const (
	OnboardingPending  OnboardingStatus = "pending"
	OnboardingApproved OnboardingStatus = "approved"
	OnboardingRejected OnboardingStatus = "rejected"
)

type User struct {
	ID               string           `db:"id" json:"id"`
	Fullname         string           `db:"fullname" json:"fullname"`
	Email            string           `db:"email" json:"email"`
	PasswordHash     string           `db:"password_hash" json:"-"`
	Role             Role             `db:"role" json:"role"`
	DepartmentID     *string          `db:"department_id" json:"department_id"`
	StudentNumber    *string          `db:"student_number" json:"student_number,omitempty"`
	LecturerNumber   *string          `db:"lecturer_number" json:"lecturer_number,omitempty"`
	Occupation       *string          `db:"occupation" json:"occupation,omitempty"`
	OnboardingStatus OnboardingStatus `db:"onboarding_status" json:"onboarding_status"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// CanLogin requires both admin approval and an active account.
func (u *User) CanLogin() bool {
	return u.OnboardingStatus == OnboardingApproved && u.IsActive
}

func (u *User) Identity() *Identity {
	return &Identity{
		UserID:       u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

// Identity is the caller of a request as resolved by the auth middleware.
type Identity struct {
	UserID       string
	Role         Role
	DepartmentID *string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

func (i *Identity) IsLecturer() bool {
	return i != nil && i.Role == RoleLecturer
}

// CanModify reports whether the caller may mutate a resource owned by ownerID.
// Admins bypass ownership.
func (i *Identity) CanModify(ownerID string) bool {
	if i == nil {
		return false
	}
	return i.IsAdmin() || i.UserID == ownerID
}

func (i *Identity) Department() string {
	if i == nil || i.DepartmentID == nil {
		return ""
	}
	return *i.DepartmentID
}
