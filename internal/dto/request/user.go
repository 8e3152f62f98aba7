package request

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status   string `json:"status" validate:"omitempty,oneof=VERIFIED UNVERIFIED PENDING"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=VERIFIED UNVERIFIED PENDING"`
}
