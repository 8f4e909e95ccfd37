package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tradepost/messaging/api"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Postgres provides storage in PostgreSQL. It implements both api.DB (the
// message log) and api.Directory (read-only lookups against the users and
// listings tables).
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings the DB to ensure the connection
// is working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// InsertMessage inserts a message into the database. The returned message
// holds auto generated fields, such as the message id.
func (pg *Postgres) InsertMessage(ctx context.Context, msg api.Message) (api.Message, error) {
	m := &message{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
	if msg.ListingID != "" {
		m.ListingID = sql.NullString{String: msg.ListingID, Valid: true}
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return api.Message{}, fmt.Errorf("insert: %w", err)
	}
	return m.APIMessage(), nil
}

// ListUserMessages returns every message sent or received by the user, with
// both participants' public profiles loaded in the same query.
func (pg *Postgres) ListUserMessages(ctx context.Context, userID string) ([]api.Message, error) {
	var msgs []message
	err := pg.bun.NewSelect().
		Model(&msgs).
		Relation("Sender").
		Relation("Receiver").
		Where("message.sender_id = ? OR message.receiver_id = ?", userID, userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.APIMessage()
	}
	return out, nil
}

// ListThreadMessages returns the full message history between the two users,
// in either direction, oldest first. Equal timestamps are ordered by id.
func (pg *Postgres) ListThreadMessages(ctx context.Context, userID, otherUserID string) ([]api.Message, error) {
	var msgs []message
	err := pg.bun.NewSelect().
		Model(&msgs).
		Relation("Sender").
		Relation("Receiver").
		Where("(message.sender_id = ? AND message.receiver_id = ?) OR (message.sender_id = ? AND message.receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		OrderExpr("message.created_at ASC, message.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.APIMessage()
	}
	return out, nil
}

// MarkMessagesRead sets the read flag on every message in ids. The update is
// a single statement, so it applies to the whole id set or not at all.
func (pg *Postgres) MarkMessagesRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := pg.bun.NewUpdate().
		Model((*message)(nil)).
		Set("read = TRUE").
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// GetUser returns the public profile for the given user id, or
// api.ErrUserNotFound when no such user exists.
func (pg *Postgres) GetUser(ctx context.Context, id string) (api.Participant, error) {
	var u user
	err := pg.bun.NewSelect().
		Model(&u).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Participant{}, api.ErrUserNotFound
	}
	if err != nil {
		return api.Participant{}, fmt.Errorf("scan: %w", err)
	}
	return u.APIParticipant(), nil
}

// ListingExists reports whether the listing id references an existing row.
func (pg *Postgres) ListingExists(ctx context.Context, id string) (bool, error) {
	exists, err := pg.bun.NewSelect().
		Model((*listing)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return exists, nil
}
