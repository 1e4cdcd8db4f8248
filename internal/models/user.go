package models

import "time"

// User is a portal account managed by administrators. Major, Class and Code
// carry meaning for students only; Code doubles as the staff number for
// teachers and admins.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:255;uniqueIndex" json:"email"`
	Role          string    `gorm:"size:16;not null" json:"role"`
	Code          string    `gorm:"size:64" json:"code"`
	Major         string    `gorm:"size:128" json:"major"`
	Class         string    `gorm:"size:64" json:"class"`
	UploadLimitMB int       `gorm:"not null;default:50" json:"upload_limit_mb"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	// UserRoleStudent is the default role for imported accounts.
	UserRoleStudent = "student"
	// UserRoleTeacher can review submissions.
	UserRoleTeacher = "teacher"
	// UserRoleAdmin manages the user directory.
	UserRoleAdmin = "admin"
)

// DefaultUploadLimitMB applies when an import row omits or mangles the quota.
const DefaultUploadLimitMB = 50
