package dto

type PaymentInfoDTO struct {
	ID string `json:"id" binding:"required"`
}

type CreateOrderDTO struct {
	CourseID    string          `json:"courseId" binding:"required"`
	PaymentInfo *PaymentInfoDTO `json:"payment_info"`
}

// NewPaymentDTO amount is in the smallest currency unit.
type NewPaymentDTO struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}
