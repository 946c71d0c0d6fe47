package model

import (
	"time"

	"github.com/google/uuid"
)

// Member roles within an organization.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Member represents a user's membership in an organization. A nil UserID
// denotes a pending invitation: the row exists (reserving the email and a
// seat against the member limit) until the invitee completes signup.
type Member struct {
	BaseModel
	OrgID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Email       string `gorm:"type:varchar(255);not null;index" json:"email" validate:"required,email"`
	DisplayName string `gorm:"type:varchar(255)" json:"display_name"`
	Role        string `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=admin user"`

	// Set only while the membership is pending; consumed on accept.
	InviteToken string `gorm:"type:varchar(255);index" json:"-"`
}

// Pending reports whether this row is an unaccepted invitation.
func (m *Member) Pending() bool {
	return m.UserID == nil
}

// MemberResponse is the API shape for a membership row.
type MemberResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrgID       uuid.UUID  `json:"org_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Pending     bool       `json:"pending"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts Member to MemberResponse.
func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		ID:          m.ID,
		OrgID:       m.OrgID,
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		Pending:     m.Pending(),
		CreatedAt:   m.CreatedAt,
	}
}
