package users

import "time"

// User is the server-authoritative profile returned by the signing
// platform. It is held in memory only; on a cold start it is
// reconstructed from GET /auth/profile by presenting the cached access
// credential.
type User struct {
	ID                  int64     `json:"id,omitempty"`                    // Unique identifier for the user
	Email               string    `json:"email,omitempty"`                 // User's email address
	EmailVerified       bool      `json:"email_verified,omitempty"`        // Whether the email address has been confirmed
	FreeDocumentsSigned int       `json:"free_documents_signed,omitempty"` // Freemium usage counter
	IsAdmin             bool      `json:"is_admin,omitempty"`              // Administrative privileges flag
	CreatedAt           time.Time `json:"created_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// CanSignFree reports whether the user still has free signatures left
// under the freemium quota. Admins are unlimited.
func (u *User) CanSignFree(limit int) bool {
	if u.IsAdmin {
		return true
	}
	return u.FreeDocumentsSigned < limit
}

// Equal compares the fields the session layer cares about when deciding
// whether a state transition is observable.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ID == other.ID &&
		u.Email == other.Email &&
		u.EmailVerified == other.EmailVerified &&
		u.FreeDocumentsSigned == other.FreeDocumentsSigned &&
		u.IsAdmin == other.IsAdmin
}
