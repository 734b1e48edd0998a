package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is the stored conversation document. Participants are kept as hex
// strings (the layout the frontend has always written), messages as the
// ordered list of message document ids. Insertion order of the messages
// array is authoritative for chronology.
type Chat struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Users    []string             `bson:"users" json:"users"`
	Messages []primitive.ObjectID `bson:"messages" json:"messages"`
}

// Message is persisted as its own document and referenced from the owning
// chat by id. IsRead flips true exactly once, when the recipient fetches
// the chat.
type Message struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content string             `bson:"content" json:"content"`
	From    string             `bson:"from" json:"from"`
	To      string             `bson:"to" json:"to"`
	SentAt  time.Time          `bson:"sentAt" json:"sentAt"`
	IsRead  bool               `bson:"isRead" json:"isRead"`
}

// UserSummary is the joined participant detail attached to chat listings.
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	Fullname       string             `bson:"fullname" json:"fullname"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Image          string             `bson:"image" json:"image"`
	Phone          string             `bson:"phone" json:"phone"`
	ExpoPushTokens []string           `bson:"expoPushTokens,omitempty" json:"expoPushTokens,omitempty"`
}

// ChatSummary is one entry of a paginated chat listing: the chat plus its
// resolved latest message and participant details.
type ChatSummary struct {
	ID            primitive.ObjectID   `bson:"_id" json:"_id"`
	Messages      []primitive.ObjectID `bson:"messages" json:"messages"`
	LatestMessage *Message             `bson:"latestMessage,omitempty" json:"latestMessage,omitempty"`
	UserDetails   []UserSummary        `bson:"userDetails" json:"userDetails"`
}

// FullChat is the unpaginated view returned by a direct chat fetch: complete
// message history, in messages-array order.
type FullChat struct {
	ID          primitive.ObjectID `json:"_id"`
	Users       []string           `json:"users"`
	UserDetails []UserSummary      `json:"userDetails"`
	Messages    []Message          `json:"messages"`
}
