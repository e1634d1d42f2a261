package model

import (
	"database/sql"
	"time"
)

const (
	StatusPending  = "pending"
	StatusWaiting  = "waiting"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Statuses lists every registration status in bucket order.
var Statuses = []string{StatusPending, StatusWaiting, StatusApproved, StatusDeclined}

func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Registration struct {
	ID        int64         `db:"id" json:"id"`
	EventID   int64         `db:"event_id" json:"event_id"`
	AuthorID  sql.NullInt64 `db:"author_id" json:"author_id,omitempty"`
	Username  string        `db:"username" json:"username"`
	Email     string        `db:"email" json:"email"`
	Phone     string        `db:"phone" json:"phone"`
	Password  string        `db:"password" json:"-"`
	Status    string        `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

type DeclinedRegistration struct {
	ID             int64     `db:"id" json:"id"`
	RegistrationID int64     `db:"registration_id" json:"registration_id"`
	Reason         string    `db:"reason" json:"reason"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegistrationUpdate carries a partial update: nil fields stay untouched.
type RegistrationUpdate struct {
	ID       int64
	Password string
	Username *string
	Email    *string
	Phone    *string
}

type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Waiting  int64 `json:"waiting"`
	Approved int64 `json:"approved"`
	Declined int64 `json:"declined"`
}

// Notification is the payload published when a registration is declined.
type Notification struct {
	EventOwnerID     int64  `json:"event_owner_id"`
	EventName        string `json:"event_name"`
	ParticipantEmail string `json:"participant_email"`
}
