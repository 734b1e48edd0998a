package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the account document. ExpoPushTokens is insertion-deduplicated
// ($addToSet) and read by the chat fan-out as notification targets.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	Password       string               `bson:"password,omitempty" json:"-"`
	Fullname       string               `bson:"fullname" json:"fullname"`
	IsAdmin        bool                 `bson:"isAdmin" json:"isAdmin"`
	Email          string               `bson:"email" json:"email"`
	Phone          string               `bson:"phone" json:"phone"`
	Image          string               `bson:"image" json:"image"`
	Items          []primitive.ObjectID `bson:"items,omitempty" json:"items,omitempty"`
	Messages       []primitive.ObjectID `bson:"messages,omitempty" json:"messages,omitempty"`
	ExpoPushTokens []string             `bson:"expoPushTokens,omitempty" json:"expoPushTokens,omitempty"`
}

// Identity is the verified caller supplied by the access boundary. Core
// operations receive it as an explicit parameter and trust it as-is.
type Identity struct {
	ID       string `json:"_id"`
	Fullname string `json:"fullname"`
	IsAdmin  bool   `json:"isAdmin"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}
