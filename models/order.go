package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PaymentInfo struct {
	ID     string `bson:"id" json:"id"`
	Status string `bson:"status,omitempty" json:"status,omitempty"`
}

type Order struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	CourseID    string        `bson:"courseId" json:"courseId"`
	UserID      string        `bson:"userId" json:"userId"`
	PaymentInfo *PaymentInfo  `bson:"payment_info,omitempty" json:"payment_info,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
