package users

// CreateUserPayload represents the request body for creating a user.
type CreateUserPayload struct {
	Username  string `json:"username" mod:"trim" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" mod:"trim" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"omitempty,max=100"`
	IsStaff   bool   `json:"is_staff"`
}

// UpdateUserPayload represents the request body for updating a user.
type UpdateUserPayload struct {
	Username  *string `json:"username,omitempty" mod:"trim" validate:"omitempty,min=3,max=50"`
	FirstName *string `json:"first_name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	IsStaff   *bool   `json:"is_staff,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int `query:"limit" default:"50"`
	Offset int `query:"offset" default:"0"`
}
