package api

import "time"

// A Participant holds the public profile fields of a user taking part in a
// conversation.
type Participant struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// A Message represents a persisted message between two users, optionally tied
// to a marketplace listing.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id"`
	Content    string      `json:"content"`
	ListingID  string      `json:"listing_id,omitempty"`
	Read       bool        `json:"read"`
	CreatedAt  time.Time   `json:"created_at"`
	Sender     Participant `json:"sender"`
	Receiver   Participant `json:"receiver"`
}

// counterpartID returns the id of the party on the other side of the message,
// relative to the given viewer. For a self-message both sides are the viewer.
func (m Message) counterpartID(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// counterpart returns the profile on the other side of the message, relative
// to the given viewer.
func (m Message) counterpart(viewerID string) Participant {
	if m.SenderID == viewerID {
		return m.Receiver
	}
	return m.Sender
}

// A Conversation is the derived inbox view of all messages exchanged with one
// counterpart. It is recomputed on every request and never stored.
type Conversation struct {
	OtherUser   Participant `json:"other_user"`
	LastMessage Message     `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
	ListingID   string      `json:"listing_id,omitempty"`
}
