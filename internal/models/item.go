package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SellingUser struct {
	ID       string `bson:"id" json:"id"`
	Fullname string `bson:"fullname,omitempty" json:"fullname,omitempty"`
}

// Item is a marketplace listing.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Label       string             `bson:"label" json:"label"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	SellingUser SellingUser        `bson:"sellingUser" json:"sellingUser"`
	IsSold      bool               `bson:"isSold" json:"isSold"`
	CreatedAt   time.Time          `bson:"-" json:"createdAt,omitempty"`
}
