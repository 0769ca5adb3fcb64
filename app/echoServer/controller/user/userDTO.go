package user

// UserReq is the payload for both create and update.
// swagger:model UserReq
type UserReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
