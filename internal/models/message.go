package models

import "time"

// Message is a directed, immutable note from one user to another.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SenderID   string    `json:"sender_id" gorm:"type:varchar(36);index;not null"`
	ReceiverID string    `json:"receiver_id" gorm:"type:varchar(36);index;not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// PairKey identifies the thread between two users regardless of direction.
// Build it with NewPairKey so that Low <= High always holds.
type PairKey struct {
	Low  string
	High string
}

// NewPairKey orders a and b canonically.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// Matches reports whether m belongs to the thread.
func (k PairKey) Matches(m *Message) bool {
	return NewPairKey(m.SenderID, m.ReceiverID) == k
}

// MessageView is a message annotated with both participants' usernames.
type MessageView struct {
	Message
	SenderUsername   string `json:"sender_username"`
	ReceiverUsername string `json:"receiver_username"`
}
