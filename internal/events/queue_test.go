package events

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(4)
	q.Enqueue(Event{Kind: KindDocSave, Payload: "doc-1"})
	q.Enqueue(Event{Kind: KindDocSave, Payload: "doc-2"})

	first, ok := q.TryDequeue()
	if !ok || first.Payload != "doc-1" {
		t.Fatalf("first dequeue: got %+v ok=%v, want doc-1", first, ok)
	}
	second, ok := q.TryDequeue()
	if !ok || second.Payload != "doc-2" {
		t.Fatalf("second dequeue: got %+v ok=%v, want doc-2", second, ok)
	}
}

func TestQueue_TryDequeueEmpty(t *testing.T) {
	q := NewQueue(1)
	if _, ok := q.TryDequeue(); ok {
		t.Error("TryDequeue on empty queue should return false")
	}
}

func TestQueue_TryEnqueueFull(t *testing.T) {
	q := NewQueue(1)
	if !q.TryEnqueue(Event{Kind: KindPopContext}) {
		t.Fatal("first TryEnqueue should succeed")
	}
	if q.TryEnqueue(Event{Kind: KindPopContext}) {
		t.Error("TryEnqueue on full queue should return false")
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 50

	q := NewQueue(producers * perProducer)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(Event{Kind: KindDocSave, Payload: fmt.Sprintf("doc-%d-%d", p, i)})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		e, ok := q.TryDequeue()
		if !ok {
			break
		}
		if seen[e.Payload] {
			t.Fatalf("duplicate event %q", e.Payload)
		}
		seen[e.Payload] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("events lost: got %d, want %d", len(seen), producers*perProducer)
	}
}

func TestEvent_Validate(t *testing.T) {
	cases := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"doc_save with id", Event{Kind: KindDocSave, Payload: "doc-1"}, false},
		{"doc_save without id", Event{Kind: KindDocSave}, true},
		{"pop_context", Event{Kind: KindPopContext}, false},
		{"unknown kind passes through", Event{Kind: "something_new"}, false},
		{"empty kind", Event{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRecognized(t *testing.T) {
	if !Recognized(KindDocSave) || !Recognized(KindPopContext) {
		t.Error("known kinds should be recognized")
	}
	if Recognized("mystery") {
		t.Error("unknown kind should not be recognized")
	}
}
