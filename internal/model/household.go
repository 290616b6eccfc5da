package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Household struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CreatedBy  int64     `json:"created_by"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type HouseholdMember struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}
