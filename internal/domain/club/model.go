package club

import (
	"fmt"
	"time"
)

// Role is a member's role inside a club. Role checks on the client are
// advisory only; the backend owns the real authorization decision.
type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// CanManageMembers reports whether the role may change other members' roles.
func (r Role) CanManageMembers() bool {
	return r == RoleManager || r == RoleAdmin
}

type MembershipStatus string

const (
	StatusActive   MembershipStatus = "active"
	StatusPending  MembershipStatus = "pending"
	StatusInactive MembershipStatus = "inactive"
)

// Club is the display record for a club. Only the fields the activity cards
// and member lists render are carried.
type Club struct {
	ID       string
	Name     string
	Sport    string
	Location string
	LogoURL  string
}

func (c Club) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("club id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}

// Membership links a user to a club. ClubName and ClubLogoURL are a
// denormalized snapshot of the club's display data taken at join time.
type Membership struct {
	UserID      string
	ClubID      string
	Role        Role
	Status      MembershipStatus
	JoinedAt    time.Time
	ClubName    string
	ClubLogoURL string
}

func (m Membership) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("membership user id is required")
	}
	if m.ClubID == "" {
		return fmt.Errorf("membership club id is required")
	}
	switch m.Role {
	case RoleMember, RoleManager, RoleAdmin:
	default:
		return fmt.Errorf("membership role %q is not valid", m.Role)
	}
	switch m.Status {
	case StatusActive, StatusPending, StatusInactive:
	default:
		return fmt.Errorf("membership status %q is not valid", m.Status)
	}

	return nil
}

func (m Membership) IsActive() bool {
	return m.Status == StatusActive
}
