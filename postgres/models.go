package postgres

import (
	"database/sql"
	"time"

	"github.com/tradepost/messaging/api"
)

// A message represents a message row in the database.
type message struct {
	ID         string         `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	SenderID   string         `bun:",notnull"`
	ReceiverID string         `bun:",notnull"`
	Content    string         `bun:",notnull"`
	ListingID  sql.NullString `bun:"listing_id"`
	Read       bool           `bun:",notnull,default:false"`
	CreatedAt  time.Time      `bun:",nullzero,default:now()"`
	Sender     *user          `bun:"rel:belongs-to,join:sender_id=id"`
	Receiver   *user          `bun:"rel:belongs-to,join:receiver_id=id"`
}

// A user mirrors the public profile columns of the users table. The table is
// owned by the accounts service and is read-only here.
type user struct {
	ID        string `bun:",pk,type:uuid"`
	Username  string `bun:",notnull"`
	AvatarURL string `bun:"avatar_url"`
}

// A listing mirrors the key of the listings table, owned by the catalog
// service. Only existence checks are issued against it.
type listing struct {
	ID string `bun:",pk,type:uuid"`
}

func (m message) APIMessage() api.Message {
	msg := api.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
	if m.ListingID.Valid {
		msg.ListingID = m.ListingID.String
	}
	if m.Sender != nil {
		msg.Sender = m.Sender.APIParticipant()
	}
	if m.Receiver != nil {
		msg.Receiver = m.Receiver.APIParticipant()
	}
	return msg
}

func (u user) APIParticipant() api.Participant {
	return api.Participant{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
