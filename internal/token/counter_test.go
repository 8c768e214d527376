package token

import (
	"sync"
	"testing"
)

func TestEstimate(t *testing.T) {
	if got := Estimate(""); got != 0 {
		t.Errorf("empty text: got %d, want 0", got)
	}
	if got := Estimate("hello world, this is a draft section"); got == 0 {
		t.Error("non-empty text should estimate at least one token")
	}
}

func TestEstimate_LongerTextCountsMore(t *testing.T) {
	short := Estimate("one sentence.")
	long := Estimate("one sentence. " + "and quite a few more words to make this noticeably longer than the short one.")
	if long <= short {
		t.Errorf("longer text should estimate more tokens: short=%d long=%d", short, long)
	}
}

func TestCounter_Record(t *testing.T) {
	c := NewCounter("monitor")
	c.Record(100, 20)
	c.Record(50, 10)

	prompt, completion, calls := c.Usage()
	if prompt != 150 || completion != 30 || calls != 2 {
		t.Errorf("usage: got (%d, %d, %d), want (150, 30, 2)", prompt, completion, calls)
	}
	if c.Name() != "monitor" {
		t.Errorf("name: got %q", c.Name())
	}
}

func TestCounter_NilSafe(t *testing.T) {
	var c *Counter
	c.Record(1, 1) // must not panic
	if p, _, _ := c.Usage(); p != 0 {
		t.Errorf("nil counter usage: got %d", p)
	}
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter("monitor")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(1, 1)
			}
		}()
	}
	wg.Wait()

	prompt, completion, calls := c.Usage()
	if prompt != 1600 || completion != 1600 || calls != 1600 {
		t.Errorf("usage: got (%d, %d, %d), want (1600, 1600, 1600)", prompt, completion, calls)
	}
}
