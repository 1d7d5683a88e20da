package models

import "gorm.io/datatypes"

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleTeacher UserRole = "teacher"
	UserRoleAdmin   UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusPending  UserStatus = "pending"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	// BatchID is the cohort tag (e.g. "2026-CSE-A") used to group
	// students and courses for analytics. Empty for teachers/admins.
	BatchID string `gorm:"index" json:"batch_id"`
}

// StudentProfile holds per-student extras outside the auth record.
// CodingProfiles maps platform name to handle, e.g. {"leetcode": "jdoe"}.
type StudentProfile struct {
	BaseModel
	UserID         string         `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio            string         `json:"bio"`
	CodingProfiles datatypes.JSON `gorm:"type:jsonb" json:"coding_profiles"`
}
