package events

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func startTestCollector(t *testing.T) (*Queue, string) {
	t.Helper()

	q := NewQueue(16)
	sock := filepath.Join(t.TempDir(), "events.sock")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	c := NewCollector(q, sock, zap.NewNop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("collector start: %v", err)
	}
	return q, sock
}

func sendDatagram(t *testing.T, sock, payload string) {
	t.Helper()
	conn, err := net.Dial("unixgram", sock)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitForEvent(t *testing.T, q *Queue) (Event, bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e, ok := q.TryDequeue(); ok {
			return e, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return Event{}, false
}

func TestCollector_DeliversValidEvent(t *testing.T) {
	q, sock := startTestCollector(t)

	sendDatagram(t, sock, `{"kind":"doc_save","payload":"doc-42"}`)

	e, ok := waitForEvent(t, q)
	if !ok {
		t.Fatal("event never reached the queue")
	}
	if e.Kind != KindDocSave || e.Payload != "doc-42" {
		t.Errorf("got %+v, want doc_save/doc-42", e)
	}
}

func TestCollector_DropsMalformedPayload(t *testing.T) {
	q, sock := startTestCollector(t)

	sendDatagram(t, sock, `not json at all`)
	sendDatagram(t, sock, `{"kind":"doc_save"}`) // missing document id
	sendDatagram(t, sock, `{"kind":"doc_save","payload":"doc-7"}`)

	e, ok := waitForEvent(t, q)
	if !ok {
		t.Fatal("valid event after garbage never arrived")
	}
	if e.Payload != "doc-7" {
		t.Errorf("got %+v, want the one valid event", e)
	}
	if _, ok := q.TryDequeue(); ok {
		t.Error("malformed payloads should have been dropped")
	}
}

func TestCollector_StopsOnContextCancel(t *testing.T) {
	q := NewQueue(16)
	sock := filepath.Join(t.TempDir(), "events.sock")

	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(q, sock, zap.NewNop())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("collector start: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.isClosed() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("collector never closed after context cancel")
}
