package identity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the single coarse role attached to every account.
type Role string

const (
	RoleStudent          Role = "student"
	RoleFaculty          Role = "faculty"
	RoleAdmin            Role = "admin"
	RolePlacementOfficer Role = "placement_officer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin, RolePlacementOfficer:
		return true
	}
	return false
}

// StudentProfile carries the fields required only for student accounts. The
// student_id index is sparse, so absent profiles never collide.
type StudentProfile struct {
	StudentID  string `bson:"student_id" json:"studentId"`
	Department string `bson:"department" json:"department"`
	Year       int    `bson:"year" json:"year"`
}

// FacultyProfile carries the fields required only for faculty accounts.
type FacultyProfile struct {
	Department string `bson:"department" json:"department"`
}

// User is a registered account. PasswordHash is persisted but never
// serialized outward.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role               `bson:"role" json:"role"`
	Student      *StudentProfile    `bson:"student,omitempty" json:"student,omitempty"`
	Faculty      *FacultyProfile    `bson:"faculty,omitempty" json:"faculty,omitempty"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	IsVerified   bool               `bson:"is_verified" json:"isVerified"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsStaff reports whether the user may act on resources of other users in a
// supervisory capacity.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RolePlacementOfficer || u.Role == RoleFaculty
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
	Role     Role   `json:"role" validate:"required"`

	// Required when role is student (department also for faculty).
	StudentID  string `json:"studentId" validate:"omitempty,min=3,max=20"`
	Department string `json:"department" validate:"omitempty,min=2,max=100"`
	Year       int    `json:"year" validate:"omitempty,min=1,max=4"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone      string `json:"phone" validate:"omitempty,min=7,max=20"`
	Department string `json:"department" validate:"omitempty,min=2,max=100"`
	Year       int    `json:"year" validate:"omitempty,min=1,max=4"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type SetStatusRequest struct {
	IsActive   *bool `json:"isActive"`
	IsVerified *bool `json:"isVerified"`
}

type SetRoleRequest struct {
	Role Role `json:"role" validate:"required"`

	// Needed when promoting into a role that requires a profile.
	StudentID  string `json:"studentId" validate:"omitempty,min=3,max=20"`
	Department string `json:"department" validate:"omitempty,min=2,max=100"`
	Year       int    `json:"year" validate:"omitempty,min=1,max=4"`
}

// ListFilter narrows and pages the user directory.
type ListFilter struct {
	Role       Role
	Department string
	Year       int
	IsActive   *bool
	Page       int
	Limit      int
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// DirectoryStats accompanies the admin user listing.
type DirectoryStats struct {
	ByRole map[string]int64 `json:"byRole"`
}
