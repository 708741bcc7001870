package user

import "errors"

// Storage-level outcomes the service layer translates into API errors.
var (
	// ErrNotFound is returned when no user matches the given id.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the unique index on email rejects a write.
	ErrDuplicateEmail = errors.New("email already in use")
)

// User represents a user entity in the system.
type User struct {
	ID       string // ID is the storage-assigned identifier, empty until creation succeeds
	Name     string // Name is the full name of the user
	Email    string // Email is the unique email address of the user
	Age      int64  // Age is the user's age in years, never negative
	IsActive bool   // IsActive marks whether the user is active
}

// Patch describes a partial update. A nil field means "leave unchanged".
type Patch struct {
	Name     *string
	Email    *string
	Age      *int64
	IsActive *bool
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil && p.IsActive == nil
}
