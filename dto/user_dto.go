package dto

type UpdateUserInfoDTO struct {
	Name string `json:"name" binding:"required"`
}

// UpdateAvatarDTO holds a base64 image, optionally as a data URI.
type UpdateAvatarDTO struct {
	Avatar string `json:"avatar" binding:"required"`
}

type UpdateRoleDTO struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=user admin"`
}
