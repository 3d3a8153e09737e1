package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is the bson document stored in the chats collection. The account
// service only bootstraps its indexes; documents are written by the
// messaging layer.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Participants []primitive.ObjectID `bson:"participants"`
	LastMessage  primitive.ObjectID   `bson:"lastMessage,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

// Message is the bson document stored in the messages collection.
type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Chat      primitive.ObjectID   `bson:"chat"`
	Sender    primitive.ObjectID   `bson:"sender"`
	Text      string               `bson:"text,omitempty"`
	Media     string               `bson:"media,omitempty"`
	Type      string               `bson:"type"`
	ReadBy    []primitive.ObjectID `bson:"readBy"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}
