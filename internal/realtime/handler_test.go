package realtime

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"photohire-backend/internal/chat"
	"photohire-backend/internal/events"
)

type capturePublisher struct {
	sent []events.MessageSent
}

func (p *capturePublisher) PublishMessageSent(_ context.Context, e events.MessageSent) error {
	p.sent = append(p.sent, e)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *Hub, *chat.MemoryStore, *capturePublisher) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log)
	store := chat.NewMemoryStore()
	pub := &capturePublisher{}
	return NewHandler(hub, chat.NewService(store), pub, log), hub, store, pub
}

func TestHandleRegisterThenDeliver(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	ctx := context.Background()

	alice := &fakeConn{}
	bob := &fakeConn{}
	h.handle(ctx, alice, []byte(`{"event":"register_user","data":{"user_id":"alice"}}`))
	h.handle(ctx, bob, []byte(`{"event":"register_user","data":{"user_id":"bob"}}`))

	h.handle(ctx, alice, []byte(`{"event":"send_message","data":{"sender_id":"alice","receiver_id":"bob","message":"hi"}}`))

	got := bob.received()
	if len(got) != 1 || got[0].Event != EventNewMessage {
		t.Fatalf("expected one new_message on bob's connection, got %v", got)
	}
	if len(alice.received()) != 0 {
		t.Fatalf("sender must not receive their own message")
	}
}

func TestHandlePersistsAndPublishesMessages(t *testing.T) {
	h, _, store, pub := newTestHandler(t)
	ctx := context.Background()

	h.handle(ctx, &fakeConn{}, []byte(`{"event":"send_message","data":{"sender_id":"alice","receiver_id":"bob","message":"hi"}}`))

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0].Body != "hi" {
		t.Fatalf("expected message persisted, got %v", msgs)
	}
	if len(pub.sent) != 1 || pub.sent[0].MessageID != msgs[0].ID {
		t.Fatalf("expected a message sent event for the stored record, got %v", pub.sent)
	}
}

func TestHandleLocationFlow(t *testing.T) {
	h, _, _, _ := newTestHandler(t)
	ctx := context.Background()

	watcher := &fakeConn{}
	h.handle(ctx, watcher, []byte(`{"event":"join_location_updates"}`))
	h.handle(ctx, &fakeConn{}, []byte(`{"event":"update_location","data":{"photographer_id":"p1","latitude":52.52,"longitude":13.405}}`))

	got := watcher.received()
	if len(got) != 1 || got[0].Event != EventLocationUpdate {
		t.Fatalf("expected one location_update, got %v", got)
	}
	data := got[0].Data.(LocationUpdateData)
	if data.PhotographerID != "p1" || data.Latitude != 52.52 {
		t.Fatalf("unexpected payload: %+v", data)
	}

	h.handle(ctx, watcher, []byte(`{"event":"leave_location_updates"}`))
	h.handle(ctx, &fakeConn{}, []byte(`{"event":"update_location","data":{"photographer_id":"p1","latitude":1,"longitude":2}}`))
	if len(watcher.received()) != 1 {
		t.Fatalf("expected no update after leaving the room")
	}
}

func TestHandleToleratesGarbage(t *testing.T) {
	h, hub, _, _ := newTestHandler(t)
	ctx := context.Background()
	conn := &fakeConn{}

	frames := []string{
		`not json`,
		`{"event":"register_user","data":{"user_id":""}}`,
		`{"event":"register_user","data":"wrong shape"}`,
		`{"event":"send_message","data":42}`,
		`{"event":"no_such_event","data":{}}`,
	}
	for _, f := range frames {
		h.handle(ctx, conn, []byte(f))
	}

	if hub.ActiveUsers() != 0 {
		t.Fatalf("expected no registration from malformed frames")
	}
	if len(conn.received()) != 0 {
		t.Fatalf("expected no replies to malformed frames")
	}
}
