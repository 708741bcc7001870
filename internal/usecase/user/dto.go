package user

// CreateUserRequest represents the request payload for creating a new user.
// IsActive defaults to true when left unset.
type CreateUserRequest struct {
	Name     string `validate:"required,min=2,max=80"`
	Email    string `validate:"required,email"`
	Age      int64  `validate:"gte=0"`
	IsActive *bool
}

// CreateUserResponse represents the created record, including the assigned id.
type CreateUserResponse struct {
	User User
}

// UpdateUserRequest represents the request payload for updating an existing user.
// A nil field means "leave unchanged"; a present field must satisfy the same
// rule it has at creation.
type UpdateUserRequest struct {
	ID       string  `validate:"required"`
	Name     *string `validate:"omitnil,min=2,max=80"`
	Email    *string `validate:"omitnil,email"`
	Age      *int64  `validate:"omitnil,gte=0"`
	IsActive *bool
}

// UpdateUserResponse represents the record after the update was applied.
type UpdateUserResponse struct {
	User User
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
// All filters are optional; nil bounds contribute no constraint.
type ListUsersRequest struct {
	Query    string
	MinAge   *int64
	MaxAge   *int64
	IsActive *bool
	Page     int64
	Limit    int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID       string
	Name     string
	Email    string
	Age      int64
	IsActive bool
}
