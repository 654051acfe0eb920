package models

import "time"

type Role string

const (
	RoleCoach   Role = "COACH"
	RoleStudent Role = "STUDENT"
)

// User is the authenticated actor handed to the engine by the identity
// boundary. The engine never verifies credentials itself; it only uses
// the id, role and moderator flag for authorization checks.
type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	SchoolID  int       `json:"school_id"`
	Moderator bool      `json:"moderator"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
