package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Reference errors a caller can act on. Everything else that can go wrong
// while sending is opaque to the caller.
var (
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrListingNotFound  = errors.New("listing not found")
)

func (a *API) createMessage(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			SenderID   string `json:"sender_id" validate:"required"`
			ReceiverID string `json:"receiver_id" validate:"required"`
			Content    string `json:"content" validate:"required"`
			ListingID  string `json:"listing_id"`
		}
		response struct {
			ID         string `json:"id"`
			SenderID   string `json:"sender_id"`
			ReceiverID string `json:"receiver_id"`
			Content    string `json:"content"`
			ListingID  string `json:"listing_id,omitempty"`
			Read       bool   `json:"read"`
			CreatedAt  string `json:"created_at"`
		}
	)

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	msg, err := a.sendMessage(r.Context(), body.SenderID, body.ReceiverID, body.Content, body.ListingID)
	switch {
	case errors.Is(err, ErrReceiverNotFound):
		a.respondError(w, http.StatusNotFound, err, "Recipient no longer exists")
		return
	case errors.Is(err, ErrListingNotFound):
		a.respondError(w, http.StatusNotFound, err, "Listing no longer exists")
		return
	case err != nil:
		a.respondError(w, http.StatusInternalServerError, err, "Could not send message")
		return
	}

	a.respond(w, http.StatusCreated, response{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		ListingID:  msg.ListingID,
		Read:       msg.Read,
		CreatedAt:  msg.CreatedAt.Format(time.RFC3339),
	})
}

// sendMessage checks the receiver and listing references against the
// directory and appends the message unread. The sender id is trusted:
// authentication happens upstream and is not re-checked here. The receiver is
// checked first, so a request with both references broken reports the
// receiver.
func (a *API) sendMessage(ctx context.Context, senderID, receiverID, content, listingID string) (Message, error) {
	if _, err := a.Directory.GetUser(ctx, receiverID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Message{}, fmt.Errorf("%w: %s", ErrReceiverNotFound, receiverID)
		}
		return Message{}, fmt.Errorf("resolve receiver: %w", err)
	}

	if listingID != "" {
		ok, err := a.Directory.ListingExists(ctx, listingID)
		if err != nil {
			return Message{}, fmt.Errorf("resolve listing: %w", err)
		}
		if !ok {
			return Message{}, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
		}
	}

	msg, err := a.DB.InsertMessage(ctx, Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		ListingID:  listingID,
		Read:       false,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}
