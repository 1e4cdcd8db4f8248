package models

import "time"

// GroupMaxMembers caps how many students a survey group may hold.
const GroupMaxMembers = 5

// Group is a student survey team with a single leader.
type Group struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Slogan    string        `gorm:"size:255" json:"slogan"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Members   []GroupMember `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members"`
}

// GroupMember binds a user to a group with a role and a display major.
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"user_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Major     string    `gorm:"size:128" json:"major"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// GroupRoleLeader marks the single member that founded the group.
	GroupRoleLeader = "leader"
	// GroupRoleMember marks an invited member.
	GroupRoleMember = "member"
)

// HasMember reports whether the user already belongs to the group.
func (g Group) HasMember(userID uint) bool {
	for _, member := range g.Members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the group reached its member capacity.
func (g Group) IsFull() bool {
	return len(g.Members) >= GroupMaxMembers
}
