package model

import "time"

// Message is a direct message between two users
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	ReceiverID int64     `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Read       bool      `json:"read" db:"read"`
}

// Involves reports whether userID is sender or receiver
func (m *Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Counterpart returns the other participant as seen from userID
func (m *Message) Counterpart(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

type CreateMessageRequest struct {
	SenderID   int64  `json:"senderId" binding:"required,gt=0"`
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required,notblank"`
}

func (r *CreateMessageRequest) ToMessage() *Message {
	return &Message{
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Content:    r.Content,
	}
}

// ConversationSummary groups a user's messages by counterpart
type ConversationSummary struct {
	UserID      int64    `json:"userId"`
	LastMessage *Message `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
}
