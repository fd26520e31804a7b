package dto

type CreateCourseDTO struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	Price          float64 `json:"price" binding:"min=0"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Tags           string  `json:"tags"`
	Level          string  `json:"level"`
	Thumbnail      string  `json:"thumbnail"` // base64 image, optional
}
