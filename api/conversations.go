package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

func (a *API) listConversations(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Conversations []Conversation `json:"conversations"`
	}

	userID := r.PathValue("userID")

	msgs, err := a.DB.ListUserMessages(r.Context(), userID)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list conversations")
		return
	}

	convs := aggregateConversations(userID, msgs)
	a.Logger.Info("Aggregated conversations", "user_id", userID, "messages", len(msgs), "conversations", len(convs))

	a.respond(w, http.StatusOK, response{Conversations: convs})
}

func (a *API) listThreadMessages(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Messages []Message `json:"messages"`
	}

	userID := r.PathValue("userID")
	otherUserID := r.PathValue("otherUserID")

	msgs, err := a.DB.ListThreadMessages(r.Context(), userID, otherUserID)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list messages")
		return
	}

	if err := a.markThreadRead(r.Context(), userID, msgs); err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not mark messages read")
		return
	}

	if msgs == nil {
		msgs = []Message{}
	}
	a.respond(w, http.StatusOK, response{Messages: msgs})
}

// markThreadRead flips every unread message addressed to the viewer to read
// in one batch update, then mirrors the transition on the fetched slice so
// the caller never sees a stale read flag. Messages the viewer sent are left
// untouched. A repeat call finds nothing unread and performs no write.
func (a *API) markThreadRead(ctx context.Context, viewerID string, msgs []Message) error {
	var unread []string
	for _, m := range msgs {
		if m.ReceiverID == viewerID && !m.Read {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) == 0 {
		return nil
	}

	if err := a.DB.MarkMessagesRead(ctx, unread); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	for i := range msgs {
		if msgs[i].ReceiverID == viewerID && !msgs[i].Read {
			msgs[i].Read = true
		}
	}

	a.Logger.Info("Marked messages read", "user_id", viewerID, "count", len(unread))
	return nil
}

// aggregateConversations partitions every message touching the viewer into
// one group per counterpart and reduces each group to its inbox entry. A
// counterpart appears exactly once no matter which direction the individual
// messages flow. Single pass over msgs plus a sort of the groups.
func aggregateConversations(viewerID string, msgs []Message) []Conversation {
	type group struct {
		last   Message
		unread int
	}

	groups := make(map[string]*group, len(msgs))
	for _, m := range msgs {
		key := m.counterpartID(viewerID)
		g, ok := groups[key]
		if !ok {
			g = &group{last: m}
			groups[key] = g
		} else if moreRecent(m, g.last) {
			g.last = m
		}
		if m.ReceiverID == viewerID && !m.Read {
			g.unread++
		}
	}

	out := make([]Conversation, 0, len(groups))
	for _, g := range groups {
		out = append(out, Conversation{
			OtherUser:   g.last.counterpart(viewerID),
			LastMessage: g.last,
			UnreadCount: g.unread,
			ListingID:   g.last.ListingID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return moreRecent(out[i].LastMessage, out[j].LastMessage)
	})
	return out
}

// moreRecent reports whether a was created after b. Equal timestamps are
// broken by message id so the ordering is deterministic across calls.
func moreRecent(a, b Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
