package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type LayoutType string

const (
	LayoutBanner     LayoutType = "Banner"
	LayoutFAQ        LayoutType = "FAQ"
	LayoutCategories LayoutType = "Categories"
)

func ParseLayoutType(s string) (LayoutType, bool) {
	switch LayoutType(s) {
	case LayoutBanner, LayoutFAQ, LayoutCategories:
		return LayoutType(s), true
	}
	return "", false
}

type FaqItem struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

type Category struct {
	Title string `bson:"title" json:"title"`
	Slug  string `bson:"slug" json:"slug"`
}

type Banner struct {
	Image    Image  `bson:"image" json:"image"`
	Title    string `bson:"title" json:"title"`
	SubTitle string `bson:"subTitle" json:"subTitle"`
}

type Layout struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type       LayoutType    `bson:"type" json:"type"`
	FAQ        []FaqItem     `bson:"faq,omitempty" json:"faq,omitempty"`
	Categories []Category    `bson:"categories,omitempty" json:"categories,omitempty"`
	Banner     *Banner       `bson:"banner,omitempty" json:"banner,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}
