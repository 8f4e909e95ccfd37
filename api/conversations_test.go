package api

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestAggregateConversations(t *testing.T) {
	var (
		bob   = Participant{ID: "u1", Username: "bob"}
		alice = Participant{ID: "u2", Username: "alice"}
		carol = Participant{ID: "u3", Username: "carol"}

		t1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		t2 = time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
		t3 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	)

	msg := func(id string, from, to Participant, at time.Time, read bool) Message {
		return Message{
			ID:         id,
			SenderID:   from.ID,
			ReceiverID: to.ID,
			Content:    "msg " + id,
			Read:       read,
			CreatedAt:  at,
			Sender:     from,
			Receiver:   to,
		}
	}

	tests := []struct {
		name     string
		viewerID string
		msgs     []Message
		want     []Conversation
	}{
		{
			name:     "Empty",
			viewerID: "u1",
			want:     []Conversation{},
		},
		{
			name:     "BothDirectionsOneGroup",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", alice, bob, t1, true),
				msg("m2", bob, alice, t2, false),
				msg("m3", alice, bob, t3, false),
			},
			want: []Conversation{
				{
					OtherUser:   alice,
					LastMessage: msg("m3", alice, bob, t3, false),
					UnreadCount: 1,
				},
			},
		},
		{
			name:     "SentByViewerNeverUnread",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", bob, alice, t1, false),
				msg("m2", bob, alice, t2, false),
			},
			want: []Conversation{
				{
					OtherUser:   alice,
					LastMessage: msg("m2", bob, alice, t2, false),
					UnreadCount: 0,
				},
			},
		},
		{
			name:     "MostRecentConversationFirst",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", alice, bob, t1, false),
				msg("m2", carol, bob, t2, false),
			},
			want: []Conversation{
				{
					OtherUser:   carol,
					LastMessage: msg("m2", carol, bob, t2, false),
					UnreadCount: 1,
				},
				{
					OtherUser:   alice,
					LastMessage: msg("m1", alice, bob, t1, false),
					UnreadCount: 1,
				},
			},
		},
		{
			name:     "CounterpartFromLastMessageSide",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", alice, bob, t1, true),
				msg("m2", bob, alice, t2, false),
			},
			want: []Conversation{
				{
					OtherUser:   alice,
					LastMessage: msg("m2", bob, alice, t2, false),
					UnreadCount: 0,
				},
			},
		},
		{
			name:     "EqualTimestampsBrokenByID",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", alice, bob, t1, false),
				msg("m2", alice, bob, t1, false),
			},
			want: []Conversation{
				{
					OtherUser:   alice,
					LastMessage: msg("m2", alice, bob, t1, false),
					UnreadCount: 2,
				},
			},
		},
		{
			name:     "SelfMessagesGroupUnderViewer",
			viewerID: "u1",
			msgs: []Message{
				msg("m1", bob, bob, t1, false),
				msg("m2", alice, bob, t2, false),
			},
			want: []Conversation{
				{
					OtherUser:   alice,
					LastMessage: msg("m2", alice, bob, t2, false),
					UnreadCount: 1,
				},
				{
					OtherUser:   bob,
					LastMessage: msg("m1", bob, bob, t1, false),
					UnreadCount: 1,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregateConversations(tt.viewerID, tt.msgs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Conversations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateConversations_listingFromLastMessageOnly(t *testing.T) {
	var (
		bob   = Participant{ID: "u1"}
		alice = Participant{ID: "u2"}
	)
	msgs := []Message{
		{
			ID: "m1", SenderID: "u2", ReceiverID: "u1", ListingID: "l1",
			CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Sender:    alice, Receiver: bob,
		},
		{
			ID: "m2", SenderID: "u2", ReceiverID: "u1",
			CreatedAt: time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
			Sender:    alice, Receiver: bob,
		},
	}

	got := aggregateConversations("u1", msgs)
	if len(got) != 1 {
		t.Fatalf("Got %d conversations, want 1", len(got))
	}
	if got[0].ListingID != "" {
		t.Errorf("Got ListingID %q, want empty: the listing comes from the last message only", got[0].ListingID)
	}
}

// Every counterpart appears exactly once, no matter how many messages were
// exchanged or in which direction.
func TestAggregateConversations_bijection(t *testing.T) {
	participant := func(id string) Participant { return Participant{ID: id} }

	var msgs []Message
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	counterparts := []string{"u2", "u3", "u4"}
	id := 0
	for _, c := range counterparts {
		for i := 0; i < 3; i++ {
			id++
			from, to := "u1", c
			if i%2 == 0 {
				from, to = c, "u1"
			}
			msgs = append(msgs, Message{
				ID:         string(rune('a' + id)),
				SenderID:   from,
				ReceiverID: to,
				CreatedAt:  at.Add(time.Duration(id) * time.Minute),
				Sender:     participant(from),
				Receiver:   participant(to),
			})
		}
	}

	got := aggregateConversations("u1", msgs)
	if len(got) != len(counterparts) {
		t.Fatalf("Got %d conversations, want %d", len(got), len(counterparts))
	}
	seen := make(map[string]bool)
	for _, conv := range got {
		if seen[conv.OtherUser.ID] {
			t.Errorf("Counterpart %s appears more than once", conv.OtherUser.ID)
		}
		seen[conv.OtherUser.ID] = true
	}
}

func TestMoreRecent(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name string
		a, b Message
		want bool
	}{
		{"Later", Message{ID: "a", CreatedAt: t2}, Message{ID: "b", CreatedAt: t1}, true},
		{"Earlier", Message{ID: "b", CreatedAt: t1}, Message{ID: "a", CreatedAt: t2}, false},
		{"TieGreaterID", Message{ID: "b", CreatedAt: t1}, Message{ID: "a", CreatedAt: t1}, true},
		{"TieLesserID", Message{ID: "a", CreatedAt: t1}, Message{ID: "b", CreatedAt: t1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moreRecent(tt.a, tt.b); got != tt.want {
				t.Errorf("moreRecent(%s, %s) = %v, want %v", tt.a.ID, tt.b.ID, got, tt.want)
			}
		})
	}
}
