package dto

type FaqItemDTO struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

type CategoryDTO struct {
	Title string `json:"title" binding:"required"`
}

// LayoutDTO is shared by create and edit. Which fields apply depends on Type.
type LayoutDTO struct {
	Type       string        `json:"type" binding:"required"`
	Image      string        `json:"image"`
	Title      string        `json:"title"`
	SubTitle   string        `json:"subTitle"`
	FAQ        []FaqItemDTO  `json:"faq" binding:"omitempty,dive"`
	Categories []CategoryDTO `json:"categories" binding:"omitempty,dive"`
}
