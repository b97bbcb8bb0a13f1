package account

import (
	"errors"
	"fmt"
)

// Role is the closed set of account roles. Every account carries exactly one.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleITStaff Role = "itstaff"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleITStaff:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RequiresMatricNumber reports whether the role owns a StudentDetail row.
func (r Role) RequiresMatricNumber() bool {
	return r == RoleStudent
}

// Procedures maps a role to the stored procedures that serve it. Keeping
// the dispatch in one table (instead of switches scattered across handlers)
// means a new role only has to be added here.
type Procedures struct {
	Create        string
	ViewByID      string
	UpdateProfile string
}

var procsByRole = map[Role]Procedures{
	RoleStudent: {
		Create:        "create_student_account",
		ViewByID:      "view_student_account_by_id",
		UpdateProfile: "p_update_student_profile",
	},
	RoleTeacher: {
		Create:        "create_teacher_account",
		ViewByID:      "view_teacher_account_by_id",
		UpdateProfile: "p_update_teacher_profile",
	},
	RoleITStaff: {
		Create:        "create_it_account",
		ViewByID:      "view_it_account_by_id",
		UpdateProfile: "p_update_user_profile",
	},
}

// Procedures returns the stored-procedure set for a role.
func (r Role) Procedures() (Procedures, error) {
	p, ok := procsByRole[r]
	if !ok {
		return Procedures{}, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	return p, nil
}

type Account struct {
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"` // never expose hash in JSON
}

// CreateAccountRequest carries the validated registration payload down to
// the repository. MatricNumber is only meaningful for students.
type CreateAccountRequest struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	MatricNumber string
}

// UpdateProfileRequest carries a profile update for an authenticated account.
type UpdateProfileRequest struct {
	UserID       int64
	FirstName    string
	LastName     string
	Email        string
	Role         Role
	MatricNumber string
}
