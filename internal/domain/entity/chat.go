package entity

import (
	"time"
)

// MessageType tags the payload kind of a message. Only text and image are
// supported by the product.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// Chat pairs exactly two users and tracks the most recent message for chat
// list previews. The account service never mutates chats; they are owned by
// the messaging layer and modeled here for completeness of the store schema.
type Chat struct {
	ID           string
	Participants [2]string // Exactly two user references.
	LastMessage  string    // Optional message reference; empty when the chat has no messages.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message belongs to one chat and carries a text and/or media payload. Same
// ownership status as Chat: schema only, no orchestration in this service.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Text      string
	Media     string // Optional image URL.
	Type      MessageType
	ReadBy    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
