package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Course struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string        `bson:"name" json:"name"`
	Description    string        `bson:"description" json:"description"`
	Price          float64       `bson:"price" json:"price"`
	EstimatedPrice float64       `bson:"estimatedPrice,omitempty" json:"estimatedPrice,omitempty"`
	Thumbnail      *Image        `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Tags           string        `bson:"tags,omitempty" json:"tags,omitempty"`
	Level          string        `bson:"level,omitempty" json:"level,omitempty"`
	Ratings        float64       `bson:"ratings" json:"ratings"`
	Purchased      int           `bson:"purchased" json:"purchased"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}
