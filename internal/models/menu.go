package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Menu struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image" bson:"image"`
	IsAvailable bool               `json:"isAvailable" bson:"isAvailable"`
	PostedBy    string             `json:"postedBy" bson:"postedBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MenuUpdate carries only the fields being changed; nil means untouched.
type MenuUpdate struct {
	Name        *string
	Price       *float64
	Description *string
	Image       *string
	IsAvailable *bool
	UpdatedAt   time.Time
}
