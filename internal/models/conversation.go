package models

// Conversation summarises every message one sender addressed to the viewer.
// It is rebuilt on each inbox read and never stored.
type Conversation struct {
	Sender      UserSummary `json:"sender"`
	LastMessage Message     `json:"last_message"`
	Count       int         `json:"count"`
}
