package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careloop/clinic-platform/internal/identity"
)

type fakeMessageRepo struct {
	inserted []*Message
	listed   string
	history  []*Message
}

func (r *fakeMessageRepo) Insert(ctx context.Context, msg *Message) error {
	msg.ID = "m-1"
	msg.CreatedAt = time.Now()
	r.inserted = append(r.inserted, msg)
	return nil
}

func (r *fakeMessageRepo) ListConversation(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	r.listed = conversationID
	return r.history, nil
}

type fakeDirectory struct {
	known map[string]bool
}

func (d *fakeDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	return d.known[userID], nil
}

var (
	sender    = identity.Identity{UserID: "client-1", Role: identity.RoleClient}
	recipient = identity.Identity{UserID: "doc-1", Role: identity.RoleDoctor}
)

func newTestService(repo *fakeMessageRepo) (*Service, *Hub) {
	hub := NewHub(nil, nil)
	dir := &fakeDirectory{known: map[string]bool{"doc-1": true, "client-1": true}}
	return NewService(repo, hub, dir, nil), hub
}

func TestSendPersistsAndDeliversBothSides(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, hub := newTestService(repo)

	senderConn := newFakeConn()
	recipientConn := newFakeConn()
	s1 := hub.Attach(sender.UserID, senderConn)
	defer s1.Close()
	s2 := hub.Attach(recipient.UserID, recipientConn)
	defer s2.Close()

	msg, err := svc.Send(context.Background(), sender, SendRequest{RecipientID: "doc-1", Body: "  hello doctor  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Body != "hello doctor" {
		t.Fatalf("body not trimmed: %q", msg.Body)
	}
	if msg.ConversationID != ConversationID("client-1", "doc-1") {
		t.Fatalf("conversation id = %q", msg.ConversationID)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d messages", len(repo.inserted))
	}
	if got := recipientConn.waitForPayload(t); got.ID != "m-1" {
		t.Fatalf("recipient got %+v", got)
	}
	if got := senderConn.waitForPayload(t); got.ID != "m-1" {
		t.Fatalf("sender echo got %+v", got)
	}
}

func TestSendValidation(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc, _ := newTestService(repo)
	cases := []struct {
		name    string
		req     SendRequest
		wantErr error
	}{
		{"no recipient", SendRequest{Body: "hi"}, ErrMissingRecipient},
		{"self message", SendRequest{RecipientID: "client-1", Body: "hi"}, ErrSelfMessage},
		{"empty body", SendRequest{RecipientID: "doc-1", Body: "   "}, ErrEmptyBody},
		{"unknown recipient", SendRequest{RecipientID: "ghost", Body: "hi"}, ErrUnknownRecipient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Send(context.Background(), sender, tc.req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Send error = %v, want %v", err, tc.wantErr)
			}
		})
	}
	if len(repo.inserted) != 0 {
		t.Fatal("invalid messages must not be stored")
	}
}

func TestHistoryUsesDerivedConversation(t *testing.T) {
	repo := &fakeMessageRepo{history: []*Message{{ID: "m-2"}, {ID: "m-1"}}}
	svc, _ := newTestService(repo)

	msgs, err := svc.History(context.Background(), sender, "doc-1", 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if repo.listed != ConversationID("client-1", "doc-1") {
		t.Fatalf("queried conversation = %q", repo.listed)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-2" {
		t.Fatalf("history = %+v", msgs)
	}
	if _, err := svc.History(context.Background(), sender, "", 0); !errors.Is(err, ErrMissingRecipient) {
		t.Fatalf("missing peer error = %v", err)
	}
}
