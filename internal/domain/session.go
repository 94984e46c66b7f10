package domain

import "time"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleTenant     Role = "tenant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleAccountant, RoleTenant:
		return true
	}
	return false
}

// UserIdentity is the authenticated principal as returned by the remote
// gateway. ID is gateway-assigned and immutable once set; Status and
// ApprovalStatus are opaque passthrough fields.
type UserIdentity struct {
	ID             string `json:"id,omitempty"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Role           Role   `json:"role"`
	Phone          string `json:"phone,omitempty"`
	IDNumber       string `json:"idNumber,omitempty"`
	Status         string `json:"status,omitempty"`
	ApprovalStatus string `json:"approvalStatus,omitempty"`
}

func (u UserIdentity) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// SessionState is the authoritative in-memory session record. Loading is
// true strictly between a command's dispatch and its resolution.
type SessionState struct {
	User          *UserIdentity `json:"user"`
	Authenticated bool          `json:"authenticated"`
	Loading       bool          `json:"loading"`
	Err           string        `json:"error,omitempty"`
}

// SessionRecord is the durable mirror of the last successfully established
// session. A single row is ever written; its existence is a boot-time hint,
// not a grant of authentication.
type SessionRecord struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	Authenticated bool      `gorm:"not null" json:"authenticated"`
	UserJSON      string    `gorm:"type:text;not null" json:"-"`
	Token         string    `gorm:"type:text" json:"-"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SessionRecord) TableName() string { return "console_session" }
