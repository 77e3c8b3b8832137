package model

import "strings"

// Role is the access level of a user.
type Role string

const (
	RoleSuperuser     Role = "Superuser"
	RoleTemplateAdmin Role = "Template Admin"
	RoleUser          Role = "User"
)

// ParseRole resolves a role name case-insensitively, accepting the legacy
// ADMIN and USER spellings.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "superuser", "admin":
		return RoleSuperuser, true
	case "template admin", "template_admin":
		return RoleTemplateAdmin, true
	case "user":
		return RoleUser, true
	}
	return "", false
}

// User is a person who can own documents and hold responsibilities.
type User struct {
	BaseModel
	Name       string `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Email      string `gorm:"type:varchar(255);column:email;not null;uniqueIndex" json:"email"`
	Role       Role   `gorm:"type:varchar(32);column:role;not null" json:"role"`
	Department string `gorm:"type:varchar(100);column:department" json:"department,omitempty"`
}

func (u *User) TableName() string {
	return "users"
}

// CreateUserDTO is the payload for creating a user.
type CreateUserDTO struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
}

// UpdateUserDTO is the payload for updating a user. Nil fields are left unchanged.
type UpdateUserDTO struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
}

// UserQuery filters the user list.
type UserQuery struct {
	Search     string
	Role       string
	Department string
	Page       *int
	PageSize   *int
}
